package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCooling_NeverBelowCoolantTemp(t *testing.T) {
	c := NewCooling()
	for i := 0; i < 5000; i++ {
		out := c.Step(0.2, CoolingInputs{CoolantFlow: 1})
		assert.GreaterOrEqual(t, out.PartTemperature, c.TCoolant)
	}
}

func TestCooling_RateNonIncreasing(t *testing.T) {
	// Newtonian decay: the cooling rate shrinks as the part approaches
	// the coolant temperature.
	c := NewCooling()

	prevRate := -1.0
	for i := 0; i < 2000; i++ {
		out := c.Step(0.2, CoolingInputs{CoolantFlow: 1})
		if prevRate >= 0 {
			assert.LessOrEqual(t, out.CoolingRate, prevRate+1e-9)
		}
		prevRate = out.CoolingRate
	}
}

func TestCooling_SolidifiedFlag(t *testing.T) {
	c := NewCooling()

	out := c.Step(0.2, CoolingInputs{CoolantFlow: 1})
	assert.False(t, out.Solidified, "fresh part at 500C must not be solidified")

	for i := 0; i < 5000; i++ {
		out = c.Step(0.2, CoolingInputs{CoolantFlow: 1})
	}
	assert.True(t, out.Solidified)
	assert.Less(t, out.PartTemperature, c.SolidusTemp)
}

func TestCooling_ZeroFlowHoldsTemperature(t *testing.T) {
	c := NewCooling()
	start := c.Temperature()
	out := c.Step(0.2, CoolingInputs{CoolantFlow: 0})
	assert.Equal(t, start, out.PartTemperature)
	assert.Equal(t, 0.0, out.CoolingRate)
}

func TestCooling_HandoffTemperature(t *testing.T) {
	c := NewCooling()
	out := c.Step(0.2, CoolingInputs{CoolantFlow: 1, InitialTemp: 620, SetInitialTemp: true})
	assert.Less(t, out.PartTemperature, 620.0)
	assert.Greater(t, out.PartTemperature, 500.0)
}

func TestCooling_FlowClamped(t *testing.T) {
	a := NewCooling()
	b := NewCooling()
	outA := a.Step(0.2, CoolingInputs{CoolantFlow: 1})
	outB := b.Step(0.2, CoolingInputs{CoolantFlow: 7})
	assert.Equal(t, outA.PartTemperature, outB.PartTemperature, "flow above 1 clamps to 1")
}
