package sim

import (
	"math/rand"

	"github.com/foundry-sim/foundry-sim/sim/flow"
)

// InspectionMachine inspects parts on a fixed cycle and rejects a
// seeded-random fraction. Rejects land in an internal reject queue that
// the orchestrator drains into scrap; passes go to the output queue.
type InspectionMachine struct {
	*Base
	baseDevice

	failRate    float64
	rng         *rand.Rand
	rejectCount int
	queueReject MaterialQueue
}

// NewInspectionMachine builds an inspection station. The RNG must come
// from the plant's partitioned source (inspection stream) so reject
// decisions replay identically for a given seed.
func NewInspectionMachine(id, name string, cycleTime, failRate float64, rng *rand.Rand) (*InspectionMachine, error) {
	m := &InspectionMachine{failRate: failRate, rng: rng}
	b, err := newBase(id, name, cycleTime, m)
	if err != nil {
		return nil, err
	}
	m.Base = b
	return m, nil
}

// onSafeStop rewinds the in-flight scan but holds the part.
func (m *InspectionMachine) onSafeStop() { m.progress = 0 }

func (m *InspectionMachine) runningLogic(dt float64) error {
	if m.currentItem == "" && !m.loadNextItem() {
		return nil
	}

	m.progress += (dt / m.cycleTime) * 100.0
	if m.progress >= 100.0 {
		item := m.currentItem
		if m.rng.Float64() < m.failRate {
			m.rejectCount++
			m.queueReject.Push(item)
			m.emit(flow.InspectionFail, map[string]string{
				"part_id":       item,
				"reject_reason": "xray_defect",
			})
		} else {
			m.queueOut.Push(item)
			m.emit(flow.InspectionPass, map[string]string{"part_id": item})
		}
		m.currentItem = ""
		m.processedCount++
		m.progress = 0
	}
	return nil
}

func (m *InspectionMachine) deviceTags(tags TagMap) {
	tags[m.id+".rejects"] = IntTag(int64(m.rejectCount))
	tags[m.id+".fail_rate"] = FloatTag(m.failRate)
	tags[m.id+".progress"] = FloatTag(round2(m.progress))
	tags[m.id+".queue_in"] = IntTag(int64(m.queueIn.Len()))
	tags[m.id+".queue_out"] = IntTag(int64(m.queueOut.Len()))
}

// QueueReject is the internal buffer of failed parts awaiting scrap
// collection.
func (m *InspectionMachine) QueueReject() *MaterialQueue {
	return &m.queueReject
}
