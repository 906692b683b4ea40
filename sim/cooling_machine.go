package sim

import (
	"github.com/foundry-sim/foundry-sim/sim/flow"
	"github.com/foundry-sim/foundry-sim/sim/physics"
)

// CoolingMachine quenches hot parts using the Newtonian cooling model.
// Coolant flows only while RUNNING with a part in the tank; each loaded
// part re-seeds the model at the casting handoff temperature.
type CoolingMachine struct {
	*Base
	baseDevice

	physics     *physics.Cooling
	coolantFlow float64 // commanded flow while quenching, 0-1
	seedTemp    bool    // next physics step re-seeds the part temperature
	lastOut     physics.CoolingOutputs
}

// NewCoolingMachine builds a quench tank with full coolant flow.
func NewCoolingMachine(id, name string, cycleTime float64) (*CoolingMachine, error) {
	m := &CoolingMachine{
		physics:     physics.NewCooling(),
		coolantFlow: 1.0,
	}
	b, err := newBase(id, name, cycleTime, m)
	if err != nil {
		return nil, err
	}
	m.Base = b
	return m, nil
}

// Tick steps the cooling model every scan. With no part in the tank the
// flow command is zero and the model just sits at coolant temperature.
func (m *CoolingMachine) Tick(dt float64) error {
	in := physics.CoolingInputs{}
	if m.State() == StateRunning && m.currentItem != "" {
		in.CoolantFlow = m.coolantFlow
	}
	if m.seedTemp {
		in.SetInitialTemp = true
		in.InitialTemp = m.physics.InitialTemp
		m.seedTemp = false
	}
	m.lastOut = m.physics.Step(dt, in)
	return m.Base.Tick(dt)
}

func (m *CoolingMachine) runningLogic(dt float64) error {
	if m.currentItem == "" {
		if !m.loadNextItem() {
			return nil
		}
		m.seedTemp = true
	}

	m.progress += (dt / m.cycleTime) * 100.0
	if m.progress >= 100.0 {
		item := m.finishItem()
		m.emit(flow.CoolingComplete, map[string]string{"part_id": item})
	}
	return nil
}

func (m *CoolingMachine) deviceTags(tags TagMap) {
	tags[m.id+".part_temperature"] = FloatTag(round1(m.lastOut.PartTemperature))
	tags[m.id+".cooling_rate"] = FloatTag(round2(m.lastOut.CoolingRate))
	tags[m.id+".shrinkage_risk"] = BoolTag(m.lastOut.ShrinkageRisk)
	tags[m.id+".solidified"] = BoolTag(m.lastOut.Solidified)
	tags[m.id+".progress"] = FloatTag(round2(m.progress))
	tags[m.id+".queue_in"] = IntTag(int64(m.queueIn.Len()))
	tags[m.id+".queue_out"] = IntTag(int64(m.queueOut.Len()))
}
