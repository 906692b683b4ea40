package sim

import (
	"fmt"
	"sync"
)

// TagKind discriminates the closed set of tag value types. External
// consumers (protocol servers, bridges) must preserve the kind across
// the boundary; there is no runtime type sniffing anywhere in the core.
type TagKind uint8

const (
	TagBool TagKind = iota
	TagInt
	TagFloat
	TagString
)

// TagValue is a small tagged union: exactly one of the payload fields is
// meaningful, selected by Kind. Machines produce TagValues directly so
// the boundary never has to infer types.
type TagValue struct {
	Kind  TagKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// BoolTag wraps a boolean tag value.
func BoolTag(v bool) TagValue { return TagValue{Kind: TagBool, Bool: v} }

// IntTag wraps an integer tag value.
func IntTag(v int64) TagValue { return TagValue{Kind: TagInt, Int: v} }

// FloatTag wraps a float tag value.
func FloatTag(v float64) TagValue { return TagValue{Kind: TagFloat, Float: v} }

// StringTag wraps a string tag value.
func StringTag(v string) TagValue { return TagValue{Kind: TagString, Str: v} }

// String renders the payload for logs and test failure messages.
func (v TagValue) String() string {
	switch v.Kind {
	case TagBool:
		return fmt.Sprintf("%t", v.Bool)
	case TagInt:
		return fmt.Sprintf("%d", v.Int)
	case TagFloat:
		return fmt.Sprintf("%g", v.Float)
	default:
		return v.Str
	}
}

// TagMap is a flat mapping from fully qualified tag name to value.
type TagMap map[string]TagValue

// Merge copies every entry of other into m.
func (m TagMap) Merge(other TagMap) {
	for k, v := range other {
		m[k] = v
	}
}

// TagStore is the handoff point between the tick loop and external
// readers. It is an explicitly owned object, never a package global,
// and it is the only structure in the core with a lock: the tick loop
// publishes snapshots into it while protocol layers read from their own
// goroutines.
type TagStore struct {
	mu   sync.RWMutex
	tags TagMap
}

// NewTagStore creates an empty store.
func NewTagStore() *TagStore {
	return &TagStore{tags: make(TagMap)}
}

// Update overwrites the stored values with the given batch.
func (s *TagStore) Update(tags TagMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range tags {
		s.tags[k] = v
	}
}

// Get returns a single tag value.
func (s *TagStore) Get(name string) (TagValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.tags[name]
	return v, ok
}

// Snapshot returns a copy of the full tag state.
func (s *TagStore) Snapshot() TagMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(TagMap, len(s.tags))
	for k, v := range s.tags {
		out[k] = v
	}
	return out
}
