package sim

import (
	"github.com/foundry-sim/foundry-sim/sim/flow"
	"github.com/foundry-sim/foundry-sim/sim/physics"
)

// castingPressureSetpoint is the normalized furnace pressure commanded
// during fill and hold.
const castingPressureSetpoint = 60.0

// CastingMachine drives the LPDC cycle model. A pour requires both a
// queued charge of degassed metal and an edge-triggered pour_request
// command; the cycle then runs fill, hold, and solidification to
// completion, after which the controller re-arms the die for the next
// shot.
type CastingMachine struct {
	*Base
	baseDevice

	physics      *physics.LPDC
	pourPending  bool
	resetPending bool
	lastOut      physics.LPDCOutputs
}

// NewCastingMachine builds an LPDC cell.
func NewCastingMachine(id, name string, cycleTime float64) (*CastingMachine, error) {
	m := &CastingMachine{physics: physics.NewLPDC()}
	b, err := newBase(id, name, cycleTime, m)
	if err != nil {
		return nil, err
	}
	m.Base = b
	return m, nil
}

func (m *CastingMachine) deviceCommand(name string) {
	if name == "pour_request" {
		m.pourPending = true
	}
}

func (m *CastingMachine) runningLogic(dt float64) error {
	in := physics.LPDCInputs{PressureSetpoint: castingPressureSetpoint}
	if m.resetPending {
		in.ResetRequest = true
		m.resetPending = false
	}

	if m.currentItem == "" &&
		m.queueIn.Len() > 0 &&
		m.pourPending &&
		m.physics.State() == physics.CycleIdle &&
		!in.ResetRequest {
		m.loadNextItem()
		m.pourPending = false
		in.PourRequest = true
	}

	m.lastOut = m.physics.Step(dt, in)

	if m.lastOut.CycleState == physics.CycleComplete && m.currentItem != "" {
		item := m.finishItem()
		m.emit(flow.LPDCCycleComplete, map[string]string{"part_id": item})
		m.resetPending = true
	}
	return nil
}

func (m *CastingMachine) deviceTags(tags TagMap) {
	tags[m.id+".cycle_state"] = StringTag(string(m.lastOut.CycleState))
	tags[m.id+".fill_percent"] = FloatTag(round2(m.lastOut.FillPercentage))
	tags[m.id+".solidification_percent"] = FloatTag(round2(m.lastOut.SolidificationPercent))
	tags[m.id+".pressure"] = FloatTag(round1(m.lastOut.Pressure))
	tags[m.id+".cycle_running"] = BoolTag(m.lastOut.CycleRunning)
	tags[m.id+".last_to_solidify"] = BoolTag(m.lastOut.LastToSolidify)
	tags[m.id+".pour_request"] = BoolTag(m.pourPending)
	tags[m.id+".queue_in"] = IntTag(int64(m.queueIn.Len()))
	tags[m.id+".queue_out"] = IntTag(int64(m.queueOut.Len()))
}

// CycleState exposes the die-cycle state for diagnostics.
func (m *CastingMachine) CycleState() physics.CycleState {
	return m.physics.State()
}
