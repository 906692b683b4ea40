package physics

// Furnace is a first-order thermal model for a melting/holding furnace.
//
//	dT/dt = (P_in - P_loss) / C
//	P_in  = heaterPower% x PMax
//	P_loss = kLoss x (T - TAmbient)
//
// The rate of change is clamped to MaxRampRate and the resulting
// temperature to [TMin, TMax]. An over-temperature alarm is derived when
// T reaches AlarmFraction x TMax.
type Furnace struct {
	TAmbient float64 // degC
	CThermal float64 // J/K thermal mass
	KLoss    float64 // W/K heat loss coefficient
	PMax     float64 // W maximum heater power

	MaxRampRate   float64 // degC/s
	TMax          float64 // degC safety limit
	TMin          float64 // degC floor (ambient)
	AlarmFraction float64 // fraction of TMax that trips the alarm

	temperature float64 // degC
	heatingRate float64 // degC/s from the last step
	powerIn     float64 // W
	powerLoss   float64 // W
}

// FurnaceInputs are the control inputs for one furnace step.
type FurnaceInputs struct {
	HeaterPower float64 // percent, clamped to [0, 100]
}

// FurnaceOutputs are the sensor-like measurements produced by a step.
type FurnaceOutputs struct {
	Temperature   float64 // degC
	HeatingRate   float64 // degC/s
	PowerIn       float64 // W
	PowerLoss     float64 // W
	OverTempAlarm bool
}

// NewFurnace builds a furnace with the reference plant parameters.
func NewFurnace() *Furnace {
	f := &Furnace{
		TAmbient:      20.0,
		CThermal:      50000.0,
		KLoss:         80.0,
		PMax:          1500000.0,
		MaxRampRate:   50.0,
		TMax:          900.0,
		TMin:          20.0,
		AlarmFraction: 0.98,
	}
	f.Reset()
	return f
}

// Reset restores cold-start conditions.
func (f *Furnace) Reset() {
	f.temperature = f.TAmbient
	f.heatingRate = 0
	f.powerIn = 0
	f.powerLoss = 0
}

// Step advances the thermal simulation by dt seconds.
// HeaterPower outside [0, 100] is clamped.
func (f *Furnace) Step(dt float64, in FurnaceInputs) FurnaceOutputs {
	power := clamp(in.HeaterPower, 0, 100)

	f.powerIn = (power / 100.0) * f.PMax
	f.powerLoss = f.KLoss * (f.temperature - f.TAmbient)

	rate := (f.powerIn - f.powerLoss) / f.CThermal
	rate = clamp(rate, -f.MaxRampRate, f.MaxRampRate)

	f.temperature += rate * dt
	f.temperature = clamp(f.temperature, f.TMin, f.TMax)
	f.heatingRate = rate

	return FurnaceOutputs{
		Temperature:   f.temperature,
		HeatingRate:   f.heatingRate,
		PowerIn:       f.powerIn,
		PowerLoss:     f.powerLoss,
		OverTempAlarm: f.temperature >= f.TMax*f.AlarmFraction,
	}
}

// Temperature returns the current furnace temperature in degC.
func (f *Furnace) Temperature() float64 {
	return f.temperature
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
