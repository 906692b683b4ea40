package sim

import (
	"github.com/foundry-sim/foundry-sim/sim/flow"
	"github.com/foundry-sim/foundry-sim/sim/physics"
)

// CNCMachine drives the material-removal model. A job requires both a
// queued part and an edge-triggered trigger command; the trigger is held
// until the model is re-armed (progress zero, not busy), which lets the
// orchestrator's watchdog re-issue a missed trigger without losing
// parts.
type CNCMachine struct {
	*Base
	baseDevice

	physics        *physics.CNC
	mode           physics.MachiningMode
	triggerPending bool
	resetPending   bool
	lastOut        physics.CNCOutputs
}

// NewCNCMachine builds a machining cell in roughing mode.
func NewCNCMachine(id, name string, cycleTime float64) (*CNCMachine, error) {
	m := &CNCMachine{
		physics: physics.NewCNC(),
		mode:    physics.ModeRoughing,
	}
	b, err := newBase(id, name, cycleTime, m)
	if err != nil {
		return nil, err
	}
	m.Base = b
	return m, nil
}

func (m *CNCMachine) deviceCommand(name string) {
	switch name {
	case "trigger", "start_job":
		m.triggerPending = true
	}
}

// deviceSetTag accepts external machining-mode writes. The new mode
// applies from the next triggered job; unknown modes are ignored.
func (m *CNCMachine) deviceSetTag(name string, v TagValue) {
	if name != "mode" || v.Kind != TagString {
		return
	}
	switch mode := physics.MachiningMode(v.Str); mode {
	case physics.ModeRoughing, physics.ModeFinishing:
		m.mode = mode
	}
}

func (m *CNCMachine) runningLogic(dt float64) error {
	in := physics.CNCInputs{Mode: m.mode}
	if m.resetPending {
		in.ResetRequest = true
		m.resetPending = false
	}

	// The model only accepts a trigger at progress zero, so a re-arm
	// tick never doubles as a start tick.
	armed := !m.lastOut.Busy && m.lastOut.Progress == 0 && !in.ResetRequest
	if m.currentItem == "" && m.queueIn.Len() > 0 && m.triggerPending && armed {
		m.loadNextItem()
		m.triggerPending = false
		in.Trigger = true
	}

	m.lastOut = m.physics.Step(dt, in)

	if m.currentItem != "" && !m.lastOut.Busy && m.lastOut.Progress >= 100 {
		item := m.finishItem()
		m.emit(flow.CNCCycleComplete, map[string]string{"part_id": item})
		m.resetPending = true
	}
	return nil
}

func (m *CNCMachine) deviceTags(tags TagMap) {
	tags[m.id+".progress"] = FloatTag(round2(m.lastOut.Progress))
	tags[m.id+".spindle_rpm"] = FloatTag(round1(m.lastOut.SpindleRPM))
	tags[m.id+".mode"] = StringTag(string(m.mode))
	tags[m.id+".busy"] = BoolTag(m.lastOut.Busy)
	tags[m.id+".trigger"] = BoolTag(m.triggerPending)
	tags[m.id+".queue_in"] = IntTag(int64(m.queueIn.Len()))
	tags[m.id+".queue_out"] = IntTag(int64(m.queueOut.Len()))
}

// AwaitingTrigger reports whether parts are queued but no trigger has
// been consumed. The orchestrator's watchdog uses this to recover from
// a missed edge.
func (m *CNCMachine) AwaitingTrigger() bool {
	return m.currentItem == "" && m.queueIn.Len() > 0 && !m.triggerPending
}
