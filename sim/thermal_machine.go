package sim

import (
	"math"

	"github.com/foundry-sim/foundry-sim/sim/flow"
	"github.com/foundry-sim/foundry-sim/sim/physics"
)

// tempTolerance is how close to the target temperature the melt zone
// must be before material processing makes progress.
const tempTolerance = 15.0

// ThermalMachine couples the first-order furnace model to the machine
// framework. Used for the melting furnace and the heat-treatment oven.
//
// The physics step runs every tick regardless of state so the vessel
// cools naturally while stopped; heater power is forced to zero unless
// the machine is RUNNING. While RUNNING a bang-bang thermostat holds
// the melt zone at the target temperature and material only progresses
// once the temperature is within tolerance.
type ThermalMachine struct {
	*Base
	baseDevice

	physics     *physics.Furnace
	targetTemp  float64
	heaterPower float64 // 0-100 %
	lastOut     physics.FurnaceOutputs

	completion flow.EventType
}

// NewThermalMachine builds a furnace-type machine holding targetTemp.
func NewThermalMachine(id, name string, cycleTime, targetTemp float64, completion flow.EventType) (*ThermalMachine, error) {
	m := &ThermalMachine{
		physics:    physics.NewFurnace(),
		targetTemp: targetTemp,
		completion: completion,
	}
	b, err := newBase(id, name, cycleTime, m)
	if err != nil {
		return nil, err
	}
	m.Base = b
	return m, nil
}

// Tick steps the thermal model before the state machine so the
// temperature tags reflect this tick's physics. Heaters are off in any
// state but RUNNING.
func (m *ThermalMachine) Tick(dt float64) error {
	if m.State() != StateRunning {
		m.heaterPower = 0
	}
	m.lastOut = m.physics.Step(dt, physics.FurnaceInputs{HeaterPower: m.heaterPower})
	return m.Base.Tick(dt)
}

// detectFault latches the over-temperature alarm into fault 201.
func (m *ThermalMachine) detectFault() bool    { return m.lastOut.OverTempAlarm }
func (m *ThermalMachine) deviceFaultCode() int { return FaultOverTemperature }

// onSafeStop kills heater power.
func (m *ThermalMachine) onSafeStop() { m.heaterPower = 0 }

// deviceSetTag accepts external target-temperature writes, clamped to
// the model's safe range.
func (m *ThermalMachine) deviceSetTag(name string, v TagValue) {
	if name == "target_temp" && v.Kind == TagFloat {
		t := v.Float
		if t < m.physics.TMin {
			t = m.physics.TMin
		}
		if t > m.physics.TMax {
			t = m.physics.TMax
		}
		m.targetTemp = t
	}
}

func (m *ThermalMachine) runningLogic(dt float64) error {
	temp := m.physics.Temperature()

	// Bang-bang thermostat with a 50% maintain band.
	switch {
	case temp < m.targetTemp-5.0:
		m.heaterPower = 100.0
	case temp > m.targetTemp+5.0:
		m.heaterPower = 0.0
	default:
		m.heaterPower = 50.0
	}

	if math.Abs(temp-m.targetTemp) >= tempTolerance {
		return nil // soak until at temperature
	}

	if m.currentItem == "" && !m.loadNextItem() {
		return nil
	}

	m.progress += (dt / m.cycleTime) * 100.0
	if m.progress >= 100.0 {
		item := m.finishItem()
		if m.completion != "" {
			m.emit(m.completion, map[string]string{"part_id": item})
		}
	}
	return nil
}

func (m *ThermalMachine) deviceTags(tags TagMap) {
	tags[m.id+".temperature"] = FloatTag(round1(m.physics.Temperature()))
	tags[m.id+".target_temp"] = FloatTag(m.targetTemp)
	tags[m.id+".max_temp"] = FloatTag(m.physics.TMax)
	tags[m.id+".burner_enable"] = BoolTag(m.heaterPower > 0)
	tags[m.id+".over_temp_alarm"] = BoolTag(m.lastOut.OverTempAlarm)
	tags[m.id+".progress"] = FloatTag(round2(m.progress))
	tags[m.id+".queue_in"] = IntTag(int64(m.queueIn.Len()))
	tags[m.id+".queue_out"] = IntTag(int64(m.queueOut.Len()))
}

// Temperature exposes the melt-zone temperature for tests and the
// orchestrator's diagnostics.
func (m *ThermalMachine) Temperature() float64 {
	return m.physics.Temperature()
}
