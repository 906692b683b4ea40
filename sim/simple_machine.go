package sim

import (
	"math"

	"github.com/foundry-sim/foundry-sim/sim/flow"
)

// round2 trims a percentage for tag publishing.
func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// SimpleMachine processes one part at a time on a fixed cycle: load the
// oldest queued part, accumulate progress for cycleTime seconds, push to
// the output queue. Used for docks, degassing, pretreatment, paint
// booths, packing, and (with the buffer role) storage.
type SimpleMachine struct {
	*Base
	baseDevice

	isBuffer  bool
	capacity  int
	partCount int

	// completion, when set, is emitted once per finished part.
	completion flow.EventType
}

// NewSimpleMachine builds a generic fixed-cycle machine. The completion
// event may be empty for machines whose output is not tracked by the
// flow subsystem (docks, storage).
func NewSimpleMachine(id, name string, cycleTime float64, completion flow.EventType) (*SimpleMachine, error) {
	m := &SimpleMachine{completion: completion}
	b, err := newBase(id, name, cycleTime, m)
	if err != nil {
		return nil, err
	}
	m.Base = b
	return m, nil
}

// NewBufferMachine builds a buffer-role machine: a SimpleMachine that
// additionally reports fill level against a fixed capacity.
func NewBufferMachine(id, name string, cycleTime float64, capacity int) (*SimpleMachine, error) {
	m, err := NewSimpleMachine(id, name, cycleTime, "")
	if err != nil {
		return nil, err
	}
	m.isBuffer = true
	m.capacity = capacity
	return m, nil
}

func (m *SimpleMachine) runningLogic(dt float64) error {
	if m.currentItem == "" && !m.loadNextItem() {
		return nil // starved
	}

	m.progress += (dt / m.cycleTime) * 100.0
	if m.progress >= 100.0 {
		item := m.finishItem()
		if m.isBuffer {
			m.partCount = m.queueOut.Len()
		}
		if m.completion != "" {
			m.emit(m.completion, map[string]string{"part_id": item})
		}
	}
	return nil
}

func (m *SimpleMachine) deviceTags(tags TagMap) {
	tags[m.id+".progress"] = FloatTag(round2(m.progress))
	tags[m.id+".queue_in"] = IntTag(int64(m.queueIn.Len()))
	tags[m.id+".queue_out"] = IntTag(int64(m.queueOut.Len()))
	if m.isBuffer {
		tags[m.id+".part_count"] = IntTag(int64(m.partCount))
		tags[m.id+".capacity"] = IntTag(int64(m.capacity))
		tags[m.id+".full"] = BoolTag(m.partCount >= m.capacity)
		tags[m.id+".empty"] = BoolTag(m.partCount == 0)
	}
}
