package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCNC_RunToCompletion(t *testing.T) {
	c := NewCNC()
	dt := 0.2

	out := c.Step(dt, CNCInputs{Trigger: true, Mode: ModeRoughing})
	require.True(t, out.Busy)

	for i := 0; i < 2000 && out.Busy; i++ {
		out = c.Step(dt, CNCInputs{Mode: ModeRoughing})
	}
	assert.Equal(t, 100.0, out.Progress)
	assert.False(t, out.Busy)
	assert.Equal(t, 0.0, out.SpindleRPM)
}

func TestCNC_TriggerIgnoredMidJob(t *testing.T) {
	c := NewCNC()
	dt := 0.2

	c.Step(dt, CNCInputs{Trigger: true, Mode: ModeRoughing})
	mid := c.Step(dt, CNCInputs{Mode: ModeRoughing}).Progress
	require.Greater(t, mid, 0.0)

	// A re-trigger mid-job (progress > 0, job active) must have no effect.
	out := c.Step(dt, CNCInputs{Trigger: true, Mode: ModeFinishing})
	assert.Equal(t, ModeRoughing, out.Mode)
	assert.Greater(t, out.Progress, mid)
}

func TestCNC_SecondCycleRequiresReset(t *testing.T) {
	c := NewCNC()
	dt := 0.2

	c.Step(dt, CNCInputs{Trigger: true, Mode: ModeRoughing})
	for i := 0; i < 2000 && c.IsBusy(); i++ {
		c.Step(dt, CNCInputs{})
	}

	// Progress is parked at 100: a bare trigger cannot start a new job.
	out := c.Step(dt, CNCInputs{Trigger: true})
	assert.False(t, out.Busy)
	assert.Equal(t, 100.0, out.Progress)

	// Reset re-arms, then the trigger takes.
	out = c.Step(dt, CNCInputs{ResetRequest: true})
	require.Equal(t, 0.0, out.Progress)
	out = c.Step(dt, CNCInputs{Trigger: true, Mode: ModeFinishing})
	assert.True(t, out.Busy)
	assert.Equal(t, ModeFinishing, out.Mode)
}

func TestCNC_ModeRates(t *testing.T) {
	rough := NewCNC()
	finish := NewCNC()

	rough.Step(0.2, CNCInputs{Trigger: true, Mode: ModeRoughing})
	finish.Step(0.2, CNCInputs{Trigger: true, Mode: ModeFinishing})

	outR := rough.Step(0.2, CNCInputs{})
	outF := finish.Step(0.2, CNCInputs{})
	assert.Greater(t, outR.Progress, outF.Progress, "roughing removes material faster")
	assert.Equal(t, rough.RPMRoughing, outR.SpindleRPM)
	assert.Equal(t, finish.RPMFinishing, outF.SpindleRPM)
}

func TestCNC_UnknownModeFallsBackToRoughing(t *testing.T) {
	c := NewCNC()
	out := c.Step(0.2, CNCInputs{Trigger: true, Mode: MachiningMode("engraving")})
	assert.Equal(t, ModeRoughing, out.Mode)
}

func TestCNC_ResetIgnoredMidJob(t *testing.T) {
	c := NewCNC()
	c.Step(0.2, CNCInputs{Trigger: true})
	out := c.Step(0.2, CNCInputs{ResetRequest: true})
	assert.Greater(t, out.Progress, 0.0, "reset must not zero progress while the job is active")
	assert.True(t, out.Busy)
}
