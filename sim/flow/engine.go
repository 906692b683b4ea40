package flow

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Stage buckets used by the WIP tracker. Declared in line order so
// snapshots read naturally.
// Buckets mirror the orchestrated stage order. Cooling and pretreatment
// are in-place processes on that path (the part stays in its bucket), so
// they have no bucket of their own; their completions only count.
const (
	stageMelting       = "melting_queue"
	stageDegasser      = "degasser_queue"
	stageLPDC          = "lpdc_queue"
	stageHeatTreatment = "heat_treatment_queue"
	stageCNC           = "cnc_queue"
	stagePaint         = "paint_queue"
	stageInspection    = "inspection_queue"
	stagePacking       = "packing_queue"
)

// YieldRates are the per-stage pass probabilities applied by the flow
// engine's audit view. They mirror the plant's nominal process
// capability and are deliberately independent from the orchestrator's
// inspection/packing gates.
type YieldRates struct {
	FurnaceMelt   float64
	Degasser      float64
	LPDCCast      float64
	HeatTreatment float64
	CNCMachining  float64
	Paint         float64
}

// DefaultYieldRates returns the nominal process capabilities.
func DefaultYieldRates() YieldRates {
	return YieldRates{
		FurnaceMelt:   0.98,
		Degasser:      0.99,
		LPDCCast:      0.95,
		HeatTreatment: 0.97,
		CNCMachining:  0.96,
		Paint:         0.98,
	}
}

// Engine is the event-reactive production tracker. It subscribes one
// handler per production-event type and maintains counters, per-stage
// WIP, and KPIs from those events alone: no polling, no machine state
// inspection, no control decisions.
//
// Yield decisions draw from a single seeded RNG stream. Handlers run in
// emission order (the dispatcher is synchronous), so the draw order, and
// with it every derived number, is reproducible for a given seed.
type Engine struct {
	dispatcher *Dispatcher
	rng        *rand.Rand

	Counters *Counters
	WIP      *WIPTracker
	KPIs     *KPITracker

	rates YieldRates
}

// NewEngine builds a flow engine subscribed to every production event.
// The rng must be a dedicated stream: the engine consumes draws in event
// order and sharing the stream with another consumer breaks replay.
func NewEngine(dispatcher *Dispatcher, rng *rand.Rand) *Engine {
	e := &Engine{
		dispatcher: dispatcher,
		rng:        rng,
		Counters:   NewCounters(),
		WIP:        NewWIPTracker(),
		rates:      DefaultYieldRates(),
	}
	e.KPIs = NewKPITracker(e.Counters, e.WIP)
	e.subscribe()
	logrus.Debug("flow engine initialized (event-reactive mode)")
	return e
}

func (e *Engine) subscribe() {
	e.dispatcher.Subscribe(IngotReceived, e.onIngotReceived)
	e.dispatcher.Subscribe(FurnaceMeltReady, e.onFurnaceMeltReady)
	e.dispatcher.Subscribe(DegasserComplete, e.onDegasserComplete)
	e.dispatcher.Subscribe(LPDCCycleComplete, e.onLPDCComplete)
	e.dispatcher.Subscribe(CoolingComplete, e.onCoolingComplete)
	e.dispatcher.Subscribe(HeatTreatmentComplete, e.onHeatTreatmentComplete)
	e.dispatcher.Subscribe(CNCCycleComplete, e.onCNCComplete)
	e.dispatcher.Subscribe(PretreatmentComplete, e.onPretreatmentComplete)
	e.dispatcher.Subscribe(PaintComplete, e.onPaintComplete)
	e.dispatcher.Subscribe(InspectionPass, e.onInspectionPass)
	e.dispatcher.Subscribe(InspectionFail, e.onInspectionFail)
	e.dispatcher.Subscribe(PackingComplete, e.onPackingComplete)
}

// passes draws one yield decision from the engine's stream.
func (e *Engine) passes(rate float64) bool {
	return e.rng.Float64() < rate
}

func partID(ev Event) string {
	return ev.Data["part_id"]
}

// take removes a part from a stage bucket. Conversion stages (melt,
// cast) rename the material, so when the emitted ID is not in the
// bucket the oldest entry is consumed instead.
func (e *Engine) take(stage, id string) {
	if removed := e.WIP.Remove(stage, id); removed == "" {
		e.WIP.Remove(stage, "")
	}
}

// advance moves a part between stage buckets, applying a yield draw.
// On a failed draw the part leaves the line and the scrap counter for
// the stage is incremented.
func (e *Engine) advance(ev Event, rate float64, from, to, scrapCounter string) {
	id := partID(ev)
	e.take(from, id)
	if e.passes(rate) {
		e.WIP.Add(to, id)
		return
	}
	e.Counters.Increment(scrapCounter, 1)
	logrus.Debugf("flow: part %q scrapped at %s", id, from)
}

func (e *Engine) onIngotReceived(ev Event) {
	e.Counters.Increment("inbound_received", 1)
	e.WIP.Add(stageMelting, partID(ev))
}

func (e *Engine) onFurnaceMeltReady(ev Event) {
	e.Counters.Increment("furnace_melt", 1)
	e.advance(ev, e.rates.FurnaceMelt, stageMelting, stageDegasser, "furnace_scrap")
}

func (e *Engine) onDegasserComplete(ev Event) {
	e.Counters.Increment("degasser_processed", 1)
	e.advance(ev, e.rates.Degasser, stageDegasser, stageLPDC, "degasser_scrap")
}

func (e *Engine) onLPDCComplete(ev Event) {
	e.Counters.Increment("lpdc_cast", 1)
	e.advance(ev, e.rates.LPDCCast, stageLPDC, stageHeatTreatment, "lpdc_scrap")
}

// Cooling happens in place between casting and heat treatment; the part
// keeps its heat-treatment bucket.
func (e *Engine) onCoolingComplete(ev Event) {
	e.Counters.Increment("cooling_complete", 1)
}

func (e *Engine) onHeatTreatmentComplete(ev Event) {
	e.Counters.Increment("heat_treatment_complete", 1)
	e.advance(ev, e.rates.HeatTreatment, stageHeatTreatment, stageCNC, "heat_treatment_scrap")
}

func (e *Engine) onCNCComplete(ev Event) {
	e.Counters.Increment("cnc_machined", 1)
	e.advance(ev, e.rates.CNCMachining, stageCNC, stagePaint, "cnc_scrap")
}

// Pretreatment is an in-place surface step ahead of paint; the part
// keeps its paint bucket.
func (e *Engine) onPretreatmentComplete(ev Event) {
	e.Counters.Increment("pretreatment_complete", 1)
}

func (e *Engine) onPaintComplete(ev Event) {
	e.Counters.Increment("paint_complete", 1)
	e.advance(ev, e.rates.Paint, stagePaint, stageInspection, "paint_scrap")
}

func (e *Engine) onInspectionPass(ev Event) {
	e.Counters.Increment("inspection_pass", 1)
	id := partID(ev)
	e.take(stageInspection, id)
	e.WIP.Add(stagePacking, id)
}

func (e *Engine) onInspectionFail(ev Event) {
	e.Counters.Increment("inspection_fail", 1)
	e.take(stageInspection, partID(ev))
}

func (e *Engine) onPackingComplete(ev Event) {
	e.Counters.Increment("packing_complete", 1)
	e.take(stagePacking, partID(ev))
	e.KPIs.RecordCompletion(ev.Timestamp)
}

// Metrics returns the full KPI snapshot at the given simulation time.
func (e *Engine) Metrics(now float64) KPIs {
	return e.KPIs.Snapshot(now)
}
