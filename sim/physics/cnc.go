package physics

// MachiningMode selects the material removal rate of a CNC job.
type MachiningMode string

const (
	ModeRoughing  MachiningMode = "roughing"
	ModeFinishing MachiningMode = "finishing"
)

// CNC models machining as linear progress driven by a fixed material
// removal rate (MRR) over a fixed total removal volume:
//
//	removedVolume = MRR(mode) x dt
//	progress     += removedVolume / VolumeTotal x 100
//
// A trigger only starts a new job when no job is active AND progress is
// exactly zero, which prevents re-triggering mid-job. Completion pins
// progress at 100 and clears busy; an explicit reset request is required
// before the next cycle can start.
type CNC struct {
	MRRRoughing  float64 // mm3/s
	MRRFinishing float64 // mm3/s
	VolumeTotal  float64 // mm3 to remove per part

	RPMRoughing  float64
	RPMFinishing float64

	mode       MachiningMode
	progress   float64 // 0-100 %
	spindleRPM float64
	busy       bool
	jobActive  bool
}

// CNCInputs are the control inputs for one machining step.
type CNCInputs struct {
	Trigger      bool
	Mode         MachiningMode // unknown values fall back to roughing
	ResetRequest bool
}

// CNCOutputs are the measurements produced by a step.
type CNCOutputs struct {
	Progress   float64 // 0-100 %
	SpindleRPM float64
	Mode       MachiningMode
	Busy       bool
}

// NewCNC builds a CNC model with the reference plant parameters.
func NewCNC() *CNC {
	c := &CNC{
		MRRRoughing:  1000.0,
		MRRFinishing: 200.0,
		VolumeTotal:  50000.0,
		RPMRoughing:  3000,
		RPMFinishing: 6000,
	}
	c.Reset()
	return c
}

// Reset returns the machine to an idle, re-armed state.
func (c *CNC) Reset() {
	c.mode = ModeRoughing
	c.progress = 0
	c.spindleRPM = 0
	c.busy = false
	c.jobActive = false
}

// Step advances the machining simulation by dt seconds.
func (c *CNC) Step(dt float64, in CNCInputs) CNCOutputs {
	mode := in.Mode
	if mode != ModeRoughing && mode != ModeFinishing {
		mode = ModeRoughing
	}

	if in.Trigger && !c.jobActive && c.progress == 0 {
		c.jobActive = true
		c.mode = mode
		c.busy = true
	}

	if c.jobActive && c.progress < 100 {
		mrr := c.MRRRoughing
		rpm := c.RPMRoughing
		if c.mode == ModeFinishing {
			mrr = c.MRRFinishing
			rpm = c.RPMFinishing
		}
		c.progress += (mrr * dt / c.VolumeTotal) * 100
		c.spindleRPM = rpm
		c.busy = true
	}

	if c.progress >= 100 {
		c.progress = 100
		c.spindleRPM = 0
		c.busy = false
		c.jobActive = false
	}

	// Re-arm for the next cycle, but never mid-job.
	if in.ResetRequest && !c.jobActive {
		c.progress = 0
		c.spindleRPM = 0
		c.busy = false
	}

	return CNCOutputs{
		Progress:   c.progress,
		SpindleRPM: c.spindleRPM,
		Mode:       c.mode,
		Busy:       c.busy,
	}
}

// IsBusy reports whether a machining job is in flight.
func (c *CNC) IsBusy() bool {
	return c.busy
}
