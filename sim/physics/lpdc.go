package physics

import "math"

// CycleState is the explicit state machine driving an LPDC casting cycle.
type CycleState string

const (
	CycleIdle        CycleState = "IDLE"
	CycleFilling     CycleState = "FILLING"
	CycleHolding     CycleState = "HOLDING"
	CycleSolidifying CycleState = "SOLIDIFYING"
	CycleComplete    CycleState = "COMPLETE"
)

// LPDC models a low-pressure die-casting cycle.
//
// Filling integrates dh/dt = kFill x sqrt(P) until the die is full,
// holding maintains pressure for HoldTime, solidifying advances a linear
// progress counter over SolidificationTime and flips the last-to-solidify
// flag at 100%. COMPLETE is terminal until an explicit reset request
// returns the cycle to IDLE. A pour request only has effect while IDLE.
//
// Pressure is conceptual (normalized 0-100), not dimensional PSI; the
// square root keeps the pressure-driven flow shape without units.
type LPDC struct {
	KFill              float64 // fill coefficient
	HoldTime           float64 // s
	SolidificationTime float64 // s

	state          CycleState
	timer          float64
	fillHeight     float64 // 0-100 %
	solidProgress  float64 // 0-100 %
	pressure       float64
	cycleRunning   bool
	lastToSolidify bool
}

// LPDCInputs are the control inputs for one casting step.
type LPDCInputs struct {
	PourRequest      bool
	PressureSetpoint float64 // clamped to [0, 100]
	ResetRequest     bool
}

// LPDCOutputs are the measurements produced by a step.
type LPDCOutputs struct {
	FillPercentage        float64
	Pressure              float64
	SolidificationPercent float64
	CycleState            CycleState
	CycleRunning          bool
	LastToSolidify        bool
}

// NewLPDC builds an LPDC model with the reference plant parameters.
func NewLPDC() *LPDC {
	l := &LPDC{
		KFill:              2.0,
		HoldTime:           5.0,
		SolidificationTime: 10.0,
	}
	l.Reset()
	return l
}

// Reset returns the cycle to IDLE with an empty die.
func (l *LPDC) Reset() {
	l.state = CycleIdle
	l.timer = 0
	l.fillHeight = 0
	l.solidProgress = 0
	l.pressure = 0
	l.cycleRunning = false
	l.lastToSolidify = false
}

// Step advances the casting simulation by dt seconds.
// PressureSetpoint outside [0, 100] is clamped.
func (l *LPDC) Step(dt float64, in LPDCInputs) LPDCOutputs {
	pressure := clamp(in.PressureSetpoint, 0, 100)

	switch l.state {
	case CycleIdle:
		l.cycleRunning = false
		l.lastToSolidify = false
		if in.PourRequest {
			l.state = CycleFilling
			l.fillHeight = 0
			l.solidProgress = 0
			l.timer = 0
			l.cycleRunning = true
		}

	case CycleFilling:
		l.cycleRunning = true
		if pressure > 0 {
			l.fillHeight += l.KFill * math.Sqrt(pressure) * dt
			l.pressure = pressure
		} else {
			// No pressure, no filling.
			l.pressure = 0
		}
		if l.fillHeight >= 100 {
			l.fillHeight = 100
			l.state = CycleHolding
			l.timer = 0
		}

	case CycleHolding:
		l.cycleRunning = true
		l.pressure = pressure
		l.timer += dt
		if l.timer >= l.HoldTime {
			l.state = CycleSolidifying
			l.timer = 0
		}

	case CycleSolidifying:
		l.cycleRunning = true
		// Pressure is released during solidification.
		l.pressure = 0
		l.timer += dt
		l.solidProgress = (l.timer / l.SolidificationTime) * 100
		if l.solidProgress >= 100 {
			l.solidProgress = 100
			l.lastToSolidify = true
			l.state = CycleComplete
		}

	case CycleComplete:
		l.cycleRunning = false
		l.pressure = 0
		if in.ResetRequest {
			l.state = CycleIdle
			l.fillHeight = 0
			l.solidProgress = 0
			l.lastToSolidify = false
		}
	}

	return LPDCOutputs{
		FillPercentage:        l.fillHeight,
		Pressure:              l.pressure,
		SolidificationPercent: l.solidProgress,
		CycleState:            l.state,
		CycleRunning:          l.cycleRunning,
		LastToSolidify:        l.lastToSolidify,
	}
}

// State returns the current cycle state.
func (l *LPDC) State() CycleState {
	return l.state
}
