package physics

// Cooling models post-casting heat removal with Newton's law of cooling:
//
//	dT/dt = -kCool x flow x (T - TCoolant)
//
// Coolant flow is clamped to [0, 1] and the part temperature is floored
// at the coolant temperature. Two derived flags are exposed: a shrinkage
// risk flag when the instantaneous cooling rate exceeds a critical
// threshold, and a solidified flag once the part drops below the solidus
// temperature.
//
// The LPDC -> cooling handoff is logical, not thermally coupled: a new
// part enters at InitialTemp (or at an explicit handoff temperature).
type Cooling struct {
	TCoolant    float64 // degC
	InitialTemp float64 // degC part temperature at handoff
	KCool       float64 // 1/s cooling coefficient

	CriticalCoolingRate float64 // degC/s shrinkage-risk threshold
	SolidusTemp         float64 // degC

	temperature   float64 // degC
	coolingRate   float64 // degC/s, absolute
	shrinkageRisk bool
	solidified    bool
}

// CoolingInputs are the control inputs for one cooling step.
type CoolingInputs struct {
	CoolantFlow float64 // flow multiplier, clamped to [0, 1]

	// InitialTemp, when set, re-seeds the part temperature before
	// integrating (used for the casting handoff).
	InitialTemp    float64
	SetInitialTemp bool
}

// CoolingOutputs are the measurements produced by a step.
type CoolingOutputs struct {
	PartTemperature float64 // degC
	CoolingRate     float64 // degC/s, absolute
	ShrinkageRisk   bool
	Solidified      bool
}

// NewCooling builds a cooling model with the reference plant parameters.
func NewCooling() *Cooling {
	c := &Cooling{
		TCoolant:            25.0,
		InitialTemp:         500.0,
		KCool:               0.05,
		CriticalCoolingRate: 50.0,
		SolidusTemp:         450.0,
	}
	c.Reset()
	return c
}

// Reset restores the initial hot state.
func (c *Cooling) Reset() {
	c.temperature = c.InitialTemp
	c.coolingRate = 0
	c.shrinkageRisk = false
	c.solidified = false
}

// Step advances the cooling simulation by dt seconds.
// CoolantFlow outside [0, 1] is clamped.
func (c *Cooling) Step(dt float64, in CoolingInputs) CoolingOutputs {
	flow := clamp(in.CoolantFlow, 0, 1)

	if in.SetInitialTemp {
		c.temperature = in.InitialTemp
	}

	rate := -c.KCool * flow * (c.temperature - c.TCoolant)
	c.temperature += rate * dt
	if c.temperature < c.TCoolant {
		c.temperature = c.TCoolant
		rate = 0
	}

	c.coolingRate = -rate
	if c.coolingRate < 0 {
		c.coolingRate = -c.coolingRate
	}
	c.shrinkageRisk = c.coolingRate > c.CriticalCoolingRate
	c.solidified = c.temperature < c.SolidusTemp

	return CoolingOutputs{
		PartTemperature: c.temperature,
		CoolingRate:     c.coolingRate,
		ShrinkageRisk:   c.shrinkageRisk,
		Solidified:      c.solidified,
	}
}

// Temperature returns the current part temperature in degC.
func (c *Cooling) Temperature() float64 {
	return c.temperature
}
