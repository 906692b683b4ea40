package sim

import (
	"fmt"

	"github.com/foundry-sim/foundry-sim/sim/flow"
)

// Machine type names accepted in a PlantConfig.
const (
	TypeSimple     = "simple"
	TypeBuffer     = "buffer"
	TypeThermal    = "thermal"
	TypeCooling    = "cooling"
	TypeCasting    = "casting"
	TypeCNC        = "cnc"
	TypeInspection = "inspection"
)

// MachineSpec describes one machine in the plant configuration. Only
// the fields relevant to the machine type are consulted.
type MachineSpec struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Type      string  `yaml:"type"`
	CycleTime float64 `yaml:"cycle_time"`

	TargetTemp float64 `yaml:"target_temp,omitempty"` // thermal
	Capacity   int     `yaml:"capacity,omitempty"`    // buffer
	FailRate   float64 `yaml:"fail_rate,omitempty"`   // inspection

	// CompletionEvent, when set, names the flow event emitted per
	// finished part (simple and thermal machines).
	CompletionEvent string `yaml:"completion_event,omitempty"`
}

// PlantConfig is the full plant description loaded from YAML or built
// by DefaultPlantConfig.
type PlantConfig struct {
	TimeStep     float64       `yaml:"time_step"`
	InboundParts int           `yaml:"inbound_parts"`
	Machines     []MachineSpec `yaml:"machines"`
}

var validTypes = map[string]bool{
	TypeSimple:     true,
	TypeBuffer:     true,
	TypeThermal:    true,
	TypeCooling:    true,
	TypeCasting:    true,
	TypeCNC:        true,
	TypeInspection: true,
}

var validEvents = map[string]bool{
	string(flow.IngotReceived):         true,
	string(flow.FurnaceMeltReady):      true,
	string(flow.DegasserComplete):      true,
	string(flow.LPDCCycleComplete):     true,
	string(flow.CoolingComplete):       true,
	string(flow.HeatTreatmentComplete): true,
	string(flow.CNCCycleComplete):      true,
	string(flow.PretreatmentComplete):  true,
	string(flow.PaintComplete):         true,
	string(flow.InspectionPass):        true,
	string(flow.InspectionFail):        true,
	string(flow.PackingComplete):       true,
}

// Validate rejects configurations the plant cannot be built from.
// Construction never recovers from these; the process should exit.
func (c *PlantConfig) Validate() error {
	if c.TimeStep <= 0 {
		return fmt.Errorf("time_step must be positive, got %g", c.TimeStep)
	}
	if c.InboundParts < 0 {
		return fmt.Errorf("inbound_parts must be non-negative, got %d", c.InboundParts)
	}
	if len(c.Machines) == 0 {
		return fmt.Errorf("plant has no machines")
	}
	seen := make(map[string]bool, len(c.Machines))
	for i, m := range c.Machines {
		if m.ID == "" {
			return fmt.Errorf("machine %d: id must not be empty", i)
		}
		if seen[m.ID] {
			return fmt.Errorf("machine %d: duplicate id %q", i, m.ID)
		}
		seen[m.ID] = true
		if !validTypes[m.Type] {
			return fmt.Errorf("machine %s: unknown type %q", m.ID, m.Type)
		}
		if m.CycleTime <= 0 {
			return fmt.Errorf("machine %s: cycle_time must be positive, got %g", m.ID, m.CycleTime)
		}
		if m.Type == TypeBuffer && m.Capacity <= 0 {
			return fmt.Errorf("machine %s: buffer capacity must be positive, got %d", m.ID, m.Capacity)
		}
		if m.Type == TypeInspection && (m.FailRate < 0 || m.FailRate > 1) {
			return fmt.Errorf("machine %s: fail_rate must be in [0, 1], got %g", m.ID, m.FailRate)
		}
		if m.CompletionEvent != "" && !validEvents[m.CompletionEvent] {
			return fmt.Errorf("machine %s: unknown completion_event %q", m.ID, m.CompletionEvent)
		}
	}
	return nil
}
