package flow

// Counters holds the monotonic production counters. All increments are
// event-driven; nothing in the core ever decrements a counter.
type Counters struct {
	counts map[string]int
}

// NewCounters creates an empty counter set.
func NewCounters() *Counters {
	return &Counters{counts: make(map[string]int)}
}

// Increment adds n to the named counter, creating it at zero if needed.
func (c *Counters) Increment(name string, n int) {
	c.counts[name] += n
}

// Get returns the counter value, zero if it was never incremented.
func (c *Counters) Get(name string) int {
	return c.counts[name]
}

// All returns a copy of every counter.
func (c *Counters) All() map[string]int {
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// WIPTracker tracks the part IDs in flight at each production stage.
// Stages are named buckets holding ordered part-ID lists.
type WIPTracker struct {
	stages map[string][]string
}

// NewWIPTracker creates an empty tracker.
func NewWIPTracker() *WIPTracker {
	return &WIPTracker{stages: make(map[string][]string)}
}

// Add appends a part to the stage bucket.
func (w *WIPTracker) Add(stage, partID string) {
	w.stages[stage] = append(w.stages[stage], partID)
}

// Remove takes a part out of the stage bucket. An empty partID removes
// the oldest part (FIFO). Returns the removed ID, or "" if none matched.
func (w *WIPTracker) Remove(stage, partID string) string {
	parts := w.stages[stage]
	if len(parts) == 0 {
		return ""
	}
	if partID == "" {
		id := parts[0]
		w.stages[stage] = parts[1:]
		return id
	}
	for i, id := range parts {
		if id == partID {
			w.stages[stage] = append(parts[:i:i], parts[i+1:]...)
			return id
		}
	}
	return ""
}

// Count returns the number of parts at a stage.
func (w *WIPTracker) Count(stage string) int {
	return len(w.stages[stage])
}

// Counts returns a copy of the per-stage WIP counts.
func (w *WIPTracker) Counts() map[string]int {
	out := make(map[string]int, len(w.stages))
	for stage, parts := range w.stages {
		out[stage] = len(parts)
	}
	return out
}

// Total returns the number of parts in flight across all stages.
func (w *WIPTracker) Total() int {
	total := 0
	for _, parts := range w.stages {
		total += len(parts)
	}
	return total
}

// Parts returns a copy of the part IDs at a stage.
func (w *WIPTracker) Parts(stage string) []string {
	parts := w.stages[stage]
	out := make([]string, len(parts))
	copy(out, parts)
	return out
}
