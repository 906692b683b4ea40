package sim

import (
	"fmt"

	"github.com/foundry-sim/foundry-sim/sim/flow"
)

// Machine IDs of the reference line. The orchestrator's flow rules are
// keyed on these.
const (
	MachineInbound   = "m_inbound"
	MachineStorage   = "m_storage"
	MachineFurnace   = "m_furnace"
	MachineDegasser  = "m_degasser"
	MachineCooling1  = "m_cooling1"
	MachineLPDC      = "m_lpdc"
	MachineHeatTreat = "m_heat"
	MachineCooling2  = "m_cooling2"
	MachineCNC       = "m_cnc"
	MachineInspect   = "m_inspect"
	MachinePretreat  = "m_pretreat"
	MachinePaint1    = "m_paint1"
	MachinePaint2    = "m_paint2"
	MachinePacking   = "m_pack"
	MachineOutbound  = "m_outbound"
)

// DefaultPlantConfig describes the reference 15-machine casting line at
// the fixed 200 ms scan used for deterministic physics.
func DefaultPlantConfig() PlantConfig {
	return PlantConfig{
		TimeStep:     0.2,
		InboundParts: 100,
		Machines: []MachineSpec{
			{ID: MachineInbound, Name: "Inbound Dock", Type: TypeSimple, CycleTime: 2.0,
				CompletionEvent: string(flow.IngotReceived)},
			{ID: MachineStorage, Name: "Raw Storage", Type: TypeBuffer, CycleTime: 5.0, Capacity: 50},
			{ID: MachineFurnace, Name: "Melting Furnace", Type: TypeThermal, CycleTime: 10.0,
				TargetTemp: 750.0, CompletionEvent: string(flow.FurnaceMeltReady)},
			{ID: MachineDegasser, Name: "Degasser", Type: TypeSimple, CycleTime: 8.0,
				CompletionEvent: string(flow.DegasserComplete)},
			{ID: MachineCooling1, Name: "Cooling Tank 1", Type: TypeCooling, CycleTime: 5.0},
			{ID: MachineLPDC, Name: "LPDC Machine", Type: TypeCasting, CycleTime: 15.0},
			{ID: MachineHeatTreat, Name: "Heat Treatment", Type: TypeThermal, CycleTime: 12.0,
				TargetTemp: 500.0, CompletionEvent: string(flow.HeatTreatmentComplete)},
			{ID: MachineCooling2, Name: "Cooling Tank 2", Type: TypeCooling, CycleTime: 5.0},
			{ID: MachineCNC, Name: "CNC Machining", Type: TypeCNC, CycleTime: 10.0},
			{ID: MachineInspect, Name: "X-Ray Inspection", Type: TypeInspection, CycleTime: 6.0,
				FailRate: 0.1},
			{ID: MachinePretreat, Name: "Pretreatment", Type: TypeSimple, CycleTime: 5.0,
				CompletionEvent: string(flow.PretreatmentComplete)},
			{ID: MachinePaint1, Name: "Paint Booth 1", Type: TypeSimple, CycleTime: 8.0,
				CompletionEvent: string(flow.PaintComplete)},
			{ID: MachinePaint2, Name: "Paint Booth 2", Type: TypeSimple, CycleTime: 8.0,
				CompletionEvent: string(flow.PaintComplete)},
			{ID: MachinePacking, Name: "Packing Line", Type: TypeSimple, CycleTime: 4.0,
				CompletionEvent: string(flow.PackingComplete)},
			{ID: MachineOutbound, Name: "Shipping Dock", Type: TypeSimple, CycleTime: 2.0},
		},
	}
}

// buildMachine constructs one machine from its spec.
func buildMachine(spec MachineSpec, rng *PartitionedRNG) (Machine, error) {
	completion := flow.EventType(spec.CompletionEvent)
	switch spec.Type {
	case TypeSimple:
		return NewSimpleMachine(spec.ID, spec.Name, spec.CycleTime, completion)
	case TypeBuffer:
		return NewBufferMachine(spec.ID, spec.Name, spec.CycleTime, spec.Capacity)
	case TypeThermal:
		return NewThermalMachine(spec.ID, spec.Name, spec.CycleTime, spec.TargetTemp, completion)
	case TypeCooling:
		return NewCoolingMachine(spec.ID, spec.Name, spec.CycleTime)
	case TypeCasting:
		return NewCastingMachine(spec.ID, spec.Name, spec.CycleTime)
	case TypeCNC:
		return NewCNCMachine(spec.ID, spec.Name, spec.CycleTime)
	case TypeInspection:
		return NewInspectionMachine(spec.ID, spec.Name, spec.CycleTime, spec.FailRate,
			rng.ForSubsystem(SubsystemInspection))
	default:
		return nil, fmt.Errorf("machine %s: unknown type %q", spec.ID, spec.Type)
	}
}

// BuildPlant assembles the engine, machines, flow subsystem, and
// orchestrator from a validated configuration. Machines are registered
// in configuration order, which fixes the tick order.
func BuildPlant(cfg PlantConfig, rng *PartitionedRNG) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("plant config: %w", err)
	}

	engine, err := NewEngine(cfg.TimeStep, rng)
	if err != nil {
		return nil, err
	}
	for _, spec := range cfg.Machines {
		m, err := buildMachine(spec, rng)
		if err != nil {
			return nil, err
		}
		if err := engine.AddMachine(m); err != nil {
			return nil, err
		}
	}

	// Pre-fill the inbound dock with raw material.
	if inbound := engine.Machine(MachineInbound); inbound != nil {
		for i := 0; i < cfg.InboundParts; i++ {
			inbound.QueueIn().Push(fmt.Sprintf("RawMaterial-%d", i))
		}
	}

	orch := NewOrchestrator(engine.Machines(), rng.ForSubsystem(SubsystemOrchestrator))
	engine.SetOrchestrator(orch)
	return engine, nil
}
