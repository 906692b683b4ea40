package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFurnace_HeatingStrictlyIncreases(t *testing.T) {
	f := NewFurnace()
	dt := 0.2

	prev := f.Temperature()
	for i := 0; i < 100; i++ {
		out := f.Step(dt, FurnaceInputs{HeaterPower: 100})
		require.Greater(t, out.Temperature, prev, "temperature must strictly increase at full power, step %d", i)
		prev = out.Temperature
	}
}

func TestFurnace_NeverExceedsTMaxOrRampLimit(t *testing.T) {
	f := NewFurnace()
	dt := 0.2

	for i := 0; i < 3000; i++ {
		out := f.Step(dt, FurnaceInputs{HeaterPower: 100})
		assert.LessOrEqual(t, out.Temperature, f.TMax)
		assert.LessOrEqual(t, out.HeatingRate, f.MaxRampRate)
		assert.GreaterOrEqual(t, out.HeatingRate, -f.MaxRampRate)
	}
}

func TestFurnace_ExponentialShape(t *testing.T) {
	// Heating rate should fall off as heat loss grows with temperature.
	f := NewFurnace()
	dt := 0.2

	var early, late float64
	for i := 0; i < 1500; i++ {
		out := f.Step(dt, FurnaceInputs{HeaterPower: 100})
		if i == 10 {
			early = out.HeatingRate
		}
		late = out.HeatingRate
	}
	assert.Greater(t, early, late, "rate must decrease as temperature rises")
}

func TestFurnace_OverTempAlarm(t *testing.T) {
	f := NewFurnace()
	dt := 0.2

	alarmed := false
	for i := 0; i < 20000 && !alarmed; i++ {
		out := f.Step(dt, FurnaceInputs{HeaterPower: 100})
		if out.OverTempAlarm {
			alarmed = true
			assert.GreaterOrEqual(t, out.Temperature, f.TMax*f.AlarmFraction)
		}
	}
	// With kLoss=80 W/K the equilibrium at full power is far above TMax,
	// so the alarm must trip eventually.
	assert.True(t, alarmed, "full power heating must reach the alarm threshold")
}

func TestFurnace_InputClampAndReset(t *testing.T) {
	f := NewFurnace()

	out := f.Step(0.2, FurnaceInputs{HeaterPower: 250})
	assert.Equal(t, f.PMax, out.PowerIn, "power must be clamped to 100%%")

	f.Step(0.2, FurnaceInputs{HeaterPower: 100})
	f.Reset()
	assert.Equal(t, f.TAmbient, f.Temperature())
}

func TestFurnace_ZeroPowerCoolsTowardAmbient(t *testing.T) {
	f := NewFurnace()
	for i := 0; i < 500; i++ {
		f.Step(0.2, FurnaceInputs{HeaterPower: 100})
	}
	hot := f.Temperature()

	for i := 0; i < 500; i++ {
		f.Step(0.2, FurnaceInputs{HeaterPower: 0})
	}
	assert.Less(t, f.Temperature(), hot)
	assert.GreaterOrEqual(t, f.Temperature(), f.TAmbient)
}
