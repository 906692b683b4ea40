package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/foundry-sim/foundry-sim/sim/flow"
)

// RunPredicate gates the whole simulation: when it reports false a Step
// call is a no-op. This is the only coupling point to the supervisory
// power state.
type RunPredicate func() bool

// Engine owns the ordered machine collection and the simulation clock.
// The clock advances in fixed increments; wall-clock pacing is the
// driver's problem, not the engine's.
//
// Tick order inside one Step is fixed: orchestrator first (material
// movement decisions), then every machine in registration order with the
// same dt, then the clock. A machine tick error aborts the step and
// propagates; no partial-tick state is trustworthy after that.
type Engine struct {
	timeStep float64
	now      float64
	ticks    uint64

	machines []Machine
	byID     map[string]Machine

	orch       *Orchestrator
	dispatcher *flow.Dispatcher
	flowEngine *flow.Engine

	runPredicate RunPredicate
	tagStore     *TagStore
	rng          *PartitionedRNG
}

// NewEngine builds an engine with an empty machine set. The flow
// subsystem is created here so every registered machine shares one
// dispatcher and one seeded yield stream.
func NewEngine(timeStep float64, rng *PartitionedRNG) (*Engine, error) {
	if timeStep <= 0 {
		return nil, fmt.Errorf("time step must be positive, got %g", timeStep)
	}
	dispatcher := flow.NewDispatcher()
	return &Engine{
		timeStep:   timeStep,
		byID:       make(map[string]Machine),
		dispatcher: dispatcher,
		flowEngine: flow.NewEngine(dispatcher, rng.ForSubsystem(SubsystemFlow)),
		tagStore:   NewTagStore(),
		rng:        rng,
	}, nil
}

// AddMachine registers a machine at the end of the tick order and wires
// it to the shared dispatcher.
func (e *Engine) AddMachine(m Machine) error {
	if _, dup := e.byID[m.ID()]; dup {
		return fmt.Errorf("duplicate machine id %q", m.ID())
	}
	m.SetDispatcher(e.dispatcher)
	e.machines = append(e.machines, m)
	e.byID[m.ID()] = m
	return nil
}

// SetOrchestrator installs the flow controller ticked ahead of the
// machines. It also anchors the orchestrator's session clock.
func (e *Engine) SetOrchestrator(o *Orchestrator) {
	e.orch = o
	o.StartSession(e.now)
	e.flowEngine.KPIs.SetStartTime(e.now)
}

// SetRunPredicate installs the supervisory gate. A nil predicate means
// always run.
func (e *Engine) SetRunPredicate(p RunPredicate) {
	e.runPredicate = p
}

// StartAll enables every machine and commands a start. Fails on the
// first machine that rejects the command.
func (e *Engine) StartAll() error {
	for _, m := range e.machines {
		m.SetEnabled(true)
		if !m.HandleStartCommand() {
			return fmt.Errorf("machine %s rejected start (state=%s, fault=%d)",
				m.ID(), m.State(), m.FaultCode())
		}
	}
	return nil
}

// Step advances the simulation by one fixed tick. When the run
// predicate is false the call is a no-op: physics stay frozen and the
// clock does not move.
func (e *Engine) Step() error {
	if e.runPredicate != nil && !e.runPredicate() {
		return nil
	}

	e.dispatcher.SetClock(e.now)
	if e.orch != nil {
		e.orch.Tick(e.timeStep, e.now)
	}
	for _, m := range e.machines {
		if err := m.Tick(e.timeStep); err != nil {
			return fmt.Errorf("machine %s tick: %w", m.ID(), err)
		}
	}
	e.now += e.timeStep
	e.ticks++

	e.tagStore.Update(e.AllTags())
	return nil
}

// Run advances the simulation by n ticks, stopping on the first error.
func (e *Engine) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Now returns the simulation clock in seconds.
func (e *Engine) Now() float64 { return e.now }

// Ticks returns the number of completed steps.
func (e *Engine) Ticks() uint64 { return e.ticks }

// TimeStep returns the fixed tick size in seconds.
func (e *Engine) TimeStep() float64 { return e.timeStep }

// Machine returns a registered machine by ID, or nil.
func (e *Engine) Machine(id string) Machine { return e.byID[id] }

// Machines returns the machines in tick order.
func (e *Engine) Machines() []Machine { return e.machines }

// Dispatcher returns the shared event dispatcher.
func (e *Engine) Dispatcher() *flow.Dispatcher { return e.dispatcher }

// FlowEngine returns the event-reactive audit tracker.
func (e *Engine) FlowEngine() *flow.Engine { return e.flowEngine }

// Orchestrator returns the installed flow controller, or nil.
func (e *Engine) Orchestrator() *Orchestrator { return e.orch }

// TagStore returns the store external readers poll. It is refreshed at
// the end of every completed step.
func (e *Engine) TagStore() *TagStore { return e.tagStore }

// AllTags aggregates every machine's tags plus the plant-level WIP, KPI,
// and flow-audit namespaces.
func (e *Engine) AllTags() TagMap {
	tags := TagMap{
		"Plant.sim_time": FloatTag(e.now),
		"Plant.tick":     IntTag(int64(e.ticks)),
	}
	for _, m := range e.machines {
		tags.Merge(m.Tags())
	}
	if e.orch != nil {
		for key, qty := range e.orch.WIPState() {
			tags["Plant.WIP."+key] = IntTag(int64(qty))
		}
		k := e.orch.KPIs()
		tags["Plant.KPI.batch_id"] = IntTag(int64(e.orch.BatchID()))
		tags["Plant.KPI.total_ingots_consumed_kg"] = IntTag(int64(k.TotalIngotsConsumedKg))
		tags["Plant.KPI.total_parts_produced"] = IntTag(int64(k.TotalPartsProduced))
		tags["Plant.KPI.total_scrap"] = IntTag(int64(k.TotalScrap))
		tags["Plant.KPI.batches_completed"] = IntTag(int64(k.BatchesCompleted))
		tags["Plant.KPI.throughput_parts_hr"] = FloatTag(round2(k.ThroughputPartsPerHr))
		tags["Plant.KPI.yield_percent"] = FloatTag(round2(k.YieldPercent))
	}
	for name, count := range e.flowEngine.Counters.All() {
		tags["Plant.Flow."+name] = IntTag(int64(count))
	}
	tags["Plant.Flow.wip_total"] = IntTag(int64(e.flowEngine.WIP.Total()))
	return tags
}

// ProductionMetrics returns the structured WIP and KPI snapshot exposed
// to external layers.
func (e *Engine) ProductionMetrics() ProductionMetrics {
	m := ProductionMetrics{
		SimTime: e.now,
		Ticks:   e.ticks,
		Flow:    e.flowEngine.Metrics(e.now),
	}
	if e.orch != nil {
		m.BatchID = e.orch.BatchID()
		m.WIP = e.orch.WIPState()
		m.KPIs = e.orch.KPIs()
	}
	return m
}

// LogState dumps one line per machine to the debug log.
func (e *Engine) LogState() {
	for _, m := range e.machines {
		logrus.Debugf("%-12s state=%-8s in=%d out=%d processed=%d",
			m.ID(), m.State(), m.QueueIn().Len(), m.QueueOut().Len(), m.ProcessedCount())
	}
}
