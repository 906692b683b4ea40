package sim

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagValue_ConstructorsPreserveKind(t *testing.T) {
	assert.Equal(t, TagBool, BoolTag(true).Kind)
	assert.Equal(t, TagInt, IntTag(7).Kind)
	assert.Equal(t, TagFloat, FloatTag(1.5).Kind)
	assert.Equal(t, TagString, StringTag("Running").Kind)
}

func TestTagValue_String(t *testing.T) {
	assert.Equal(t, "true", BoolTag(true).String())
	assert.Equal(t, "42", IntTag(42).String())
	assert.Equal(t, "1.5", FloatTag(1.5).String())
	assert.Equal(t, "Faulted", StringTag("Faulted").String())
}

func TestTagMap_Merge(t *testing.T) {
	m := TagMap{"a": IntTag(1)}
	m.Merge(TagMap{"a": IntTag(2), "b": BoolTag(true)})

	assert.Equal(t, int64(2), m["a"].Int)
	assert.Equal(t, true, m["b"].Bool)
}

func TestTagStore_UpdateAndGet(t *testing.T) {
	s := NewTagStore()
	s.Update(TagMap{"m_furnace.state": StringTag("Running")})

	v, ok := s.Get("m_furnace.state")
	assert.True(t, ok)
	assert.Equal(t, "Running", v.Str)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestTagStore_SnapshotIsCopy(t *testing.T) {
	s := NewTagStore()
	s.Update(TagMap{"a": IntTag(1)})

	snap := s.Snapshot()
	snap["a"] = IntTag(99)

	v, _ := s.Get("a")
	assert.Equal(t, int64(1), v.Int)
}

func TestTagStore_ConcurrentReadersAndWriter(t *testing.T) {
	s := NewTagStore()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.Update(TagMap{"tick": IntTag(int64(i))})
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				s.Get("tick")
				s.Snapshot()
			}
		}()
	}
	wg.Wait()
}
