package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// WIP ledger keys. Mass flows in kg up to the casting stage, discrete
// parts after it.
const (
	WIPIngotsKg        = "ingots_kg"
	WIPMoltenMetalKg   = "molten_metal_kg"
	WIPDegassedMetalKg = "degassed_metal_kg"
	WIPCastParts       = "cast_parts"
	WIPHeatTreated     = "heat_treated_parts"
	WIPMachined        = "machined_parts"
	WIPPainted         = "painted_parts"
	WIPXrayPassed      = "xray_passed"
	WIPQCPassed        = "qc_passed"
	WIPScrapParts      = "scrap_parts"
)

// Flow-control constants for the reference line.
const (
	IngotKgPerMelt   = 10 // kg consumed per furnace charge
	CastKgPerPart    = 10 // kg of degassed metal per cast part
	BatchSizeKg      = 50 // ingot stock per batch
	degassedBufferKg = 50 // bottleneck guard on the degassed buffer

	inspectRejectRate = 0.03
	packRejectRate    = 0.01
)

// KPIMetrics is a read-only snapshot of the session production KPIs.
type KPIMetrics struct {
	TotalIngotsConsumedKg int
	TotalPartsProduced    int
	TotalScrap            int
	BatchesCompleted      int
	ThroughputPartsPerHr  float64
	YieldPercent          float64
}

// Orchestrator implements pull-based stage-by-stage flow control over
// the machine set. It is the authoritative owner of WIP and session
// KPIs; each tick it drains output queues into the WIP ledger, feeds
// starving machines from upstream WIP, manages the batch lifecycle, and
// recomputes KPIs. It touches machine queues and commands only, never
// FSM internals beyond the idle predicate.
//
// Scrap decisions draw from a single seeded RNG stream in a fixed stage
// order, so replays with the same seed scrap the same parts.
type Orchestrator struct {
	furnace  Machine
	degasser Machine
	lpdc     Machine
	heat     Machine
	cnc      *CNCMachine
	paint    Machine
	inspect  *InspectionMachine
	pack     Machine
	outbound Machine

	wip  map[string]int
	kpis KPIMetrics
	rng  *rand.Rand

	batchID      int
	sessionStart float64
	partSeq      int
}

// NewOrchestrator wires flow control to the plant's machines by ID.
// Missing stages are tolerated (their flow rules are skipped), which
// keeps partial plants usable in tests.
func NewOrchestrator(machines []Machine, rng *rand.Rand) *Orchestrator {
	byID := make(map[string]Machine, len(machines))
	for _, m := range machines {
		byID[m.ID()] = m
	}

	o := &Orchestrator{
		furnace:  byID[MachineFurnace],
		degasser: byID[MachineDegasser],
		lpdc:     byID[MachineLPDC],
		heat:     byID[MachineHeatTreat],
		paint:    byID[MachinePaint1],
		pack:     byID[MachinePacking],
		outbound: byID[MachineOutbound],
		wip:      make(map[string]int),
		rng:      rng,
		batchID:  1,
	}
	if c, ok := byID[MachineCNC].(*CNCMachine); ok {
		o.cnc = c
	}
	if i, ok := byID[MachineInspect].(*InspectionMachine); ok {
		o.inspect = i
	}

	for _, key := range []string{
		WIPIngotsKg, WIPMoltenMetalKg, WIPDegassedMetalKg, WIPCastParts,
		WIPHeatTreated, WIPMachined, WIPPainted, WIPXrayPassed,
		WIPQCPassed, WIPScrapParts,
	} {
		o.wip[key] = 0
	}
	o.wip[WIPIngotsKg] = BatchSizeKg
	return o
}

// StartSession anchors throughput timing to the given simulation time.
func (o *Orchestrator) StartSession(now float64) {
	o.sessionStart = now
}

// Tick runs one orchestration pass. Called by the engine before any
// machine ticks so feeds land in queues the same tick they are decided.
func (o *Orchestrator) Tick(dt, now float64) {
	o.collectOutputs()
	o.feedInputs()
	o.updateKPIs(now)
	o.checkBatchLifecycle()
}

// drain empties a machine's output queue, returning the finished count.
func (o *Orchestrator) drain(m Machine) int {
	if m == nil {
		return 0
	}
	return len(m.QueueOut().Drain())
}

func (o *Orchestrator) collectOutputs() {
	// Mass stages: one finished charge is a fixed mass of metal.
	o.wip[WIPMoltenMetalKg] += IngotKgPerMelt * o.drain(o.furnace)
	o.wip[WIPDegassedMetalKg] += IngotKgPerMelt * o.drain(o.degasser)

	// Casting converts mass to parts; downstream is 1:1.
	o.wip[WIPCastParts] += o.drain(o.lpdc)
	o.wip[WIPHeatTreated] += o.drain(o.heat)
	if o.cnc != nil {
		o.wip[WIPMachined] += o.drain(o.cnc)
	}
	o.wip[WIPPainted] += o.drain(o.paint)

	// X-ray gate: fixed seeded reject probability per part, plus the
	// machine's own reject queue.
	if o.inspect != nil {
		for range o.inspect.QueueOut().Drain() {
			if o.rng.Float64() < inspectRejectRate {
				o.scrapPart()
			} else {
				o.wip[WIPXrayPassed]++
			}
		}
		for range o.inspect.QueueReject().Drain() {
			o.scrapPart()
		}
	}

	// QC/packing gate.
	if o.pack != nil {
		for range o.pack.QueueOut().Drain() {
			if o.rng.Float64() < packRejectRate {
				o.scrapPart()
			} else {
				o.wip[WIPQCPassed]++
			}
		}
	}

	// Shipped parts leave the ledger entirely.
	o.drain(o.outbound)
}

func (o *Orchestrator) scrapPart() {
	o.wip[WIPScrapParts]++
	o.kpis.TotalScrap++
}

// feed pushes one unit of work into a machine and issues its
// edge command, if any.
func (o *Orchestrator) feed(m Machine, item, command string) {
	if m == nil {
		return
	}
	o.partSeq++
	m.QueueIn().Push(fmt.Sprintf("%s-%d", item, o.partSeq))
	if command != "" {
		m.SetCommand(command, true)
	}
}

func (o *Orchestrator) feedInputs() {
	// Furnace: consume ingots unless the degassed buffer is backed up.
	if o.furnace != nil &&
		o.wip[WIPIngotsKg] >= IngotKgPerMelt &&
		o.furnace.Idle() &&
		o.wip[WIPDegassedMetalKg] < degassedBufferKg {
		o.wip[WIPIngotsKg] -= IngotKgPerMelt
		o.kpis.TotalIngotsConsumedKg += IngotKgPerMelt
		o.feed(o.furnace, "IngotBatch", "")
	}

	if o.degasser != nil && o.wip[WIPMoltenMetalKg] >= IngotKgPerMelt && o.degasser.Idle() {
		o.wip[WIPMoltenMetalKg] -= IngotKgPerMelt
		o.feed(o.degasser, "MoltenBatch", "")
	}

	if o.lpdc != nil && o.wip[WIPDegassedMetalKg] >= CastKgPerPart && o.lpdc.Idle() {
		o.wip[WIPDegassedMetalKg] -= CastKgPerPart
		o.feed(o.lpdc, "DegassedMetal", "pour_request")
	}

	if o.heat != nil && o.wip[WIPCastParts] >= 1 && o.heat.Idle() {
		o.wip[WIPCastParts]--
		o.feed(o.heat, "CastPart", "")
	}

	if o.cnc != nil {
		switch {
		case o.wip[WIPHeatTreated] >= 1 && o.cnc.Idle():
			o.wip[WIPHeatTreated]--
			o.feed(o.cnc, "HTPart", "trigger")
		case o.cnc.AwaitingTrigger():
			// Watchdog: queued parts but the edge was missed.
			logrus.Debugf("%s: watchdog re-issuing trigger", o.cnc.ID())
			o.cnc.SetCommand("trigger", true)
		}
	}

	if o.paint != nil && o.wip[WIPMachined] >= 1 && o.paint.Idle() {
		o.wip[WIPMachined]--
		o.feed(o.paint, "MachinedPart", "")
	}

	if o.inspect != nil && o.wip[WIPPainted] >= 1 && o.inspect.Idle() {
		o.wip[WIPPainted]--
		o.feed(o.inspect, "PaintedPart", "")
	}

	if o.pack != nil && o.wip[WIPXrayPassed] >= 1 && o.pack.Idle() {
		o.wip[WIPXrayPassed]--
		o.feed(o.pack, "XRayVerifiedPart", "")
	}

	// Outbound consumes QC-passed parts; production counts at handover
	// to shipping.
	if o.outbound != nil && o.wip[WIPQCPassed] >= 1 && o.outbound.Idle() {
		o.wip[WIPQCPassed]--
		o.kpis.TotalPartsProduced++
		o.feed(o.outbound, "FinishedPart", "")
	}
}

// checkBatchLifecycle restocks ingots when the batch is exhausted.
// In-flight WIP is deliberately not cleared; production continues
// across batch boundaries.
func (o *Orchestrator) checkBatchLifecycle() {
	if o.wip[WIPIngotsKg] > 0 {
		return
	}
	o.kpis.BatchesCompleted++
	logrus.Infof("batch %d complete, restocking %d kg of ingots", o.batchID, BatchSizeKg)
	o.batchID++
	o.wip[WIPIngotsKg] = BatchSizeKg
}

func (o *Orchestrator) updateKPIs(now float64) {
	elapsedHr := (now - o.sessionStart) / 3600.0
	if elapsedHr > 0 {
		o.kpis.ThroughputPartsPerHr = float64(o.kpis.TotalPartsProduced) / elapsedHr
	}
	total := o.kpis.TotalPartsProduced + o.kpis.TotalScrap
	if total > 0 {
		o.kpis.YieldPercent = float64(o.kpis.TotalPartsProduced) / float64(total) * 100.0
	}
}

// BatchID returns the identifier of the batch currently being consumed.
func (o *Orchestrator) BatchID() int {
	return o.batchID
}

// WIPState returns a defensive copy of the WIP ledger.
func (o *Orchestrator) WIPState() map[string]int {
	out := make(map[string]int, len(o.wip))
	for k, v := range o.wip {
		out[k] = v
	}
	return out
}

// KPIs returns a snapshot of the session KPIs.
func (o *Orchestrator) KPIs() KPIMetrics {
	return o.kpis
}
