// Package flow is the event-driven production tracking subsystem.
//
// Machines emit an Event when a physical process completes; the
// Dispatcher runs the subscribed handlers synchronously, in subscription
// order, and appends every event to an in-memory log for audit/replay.
//
// This package is an observer of the plant, not a controller: nothing in
// it feeds back into flow decisions. The authoritative WIP/KPI owner is
// the orchestrator in package sim; the flow engine keeps an independent,
// event-sourced view for audit and analytics.
package flow

// EventType identifies which physical process completed.
type EventType string

const (
	IngotReceived         EventType = "INGOT_RECEIVED"
	FurnaceMeltReady      EventType = "FURNACE_MELT_READY"
	DegasserComplete      EventType = "DEGASSER_COMPLETE"
	LPDCCycleComplete     EventType = "LPDC_CYCLE_COMPLETE"
	CoolingComplete       EventType = "COOLING_COMPLETE"
	HeatTreatmentComplete EventType = "HEAT_TREATMENT_COMPLETE"
	CNCCycleComplete      EventType = "CNC_CYCLE_COMPLETE"
	PretreatmentComplete  EventType = "PRETREATMENT_COMPLETE"
	PaintComplete         EventType = "PAINT_COMPLETE"
	InspectionPass        EventType = "INSPECTION_PASS"
	InspectionFail        EventType = "INSPECTION_FAIL"
	PackingComplete       EventType = "PACKING_COMPLETE"
)

// Event is an immutable record of a completed physical process.
type Event struct {
	Type      EventType
	Timestamp float64 // simulation time, seconds
	DeviceID  string
	Data      map[string]string // event-specific payload (part_id, batch_id, ...)
}

// Handler processes one event. Handlers run inline on the emitting
// machine's tick; they must not block and must not call Emit.
type Handler func(Event)

// Dispatcher is a synchronous publish/subscribe hub with an append-only
// event log. It is single-goroutine like the rest of the core: Emit runs
// every handler to completion before returning, in subscription order,
// so determinism is preserved.
type Dispatcher struct {
	now      float64
	handlers map[EventType][]Handler
	log      []Event
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[EventType][]Handler),
	}
}

// SetClock sets the simulation time used to stamp emitted events.
// The engine calls this once per tick, before any machine runs.
func (d *Dispatcher) SetClock(now float64) {
	d.now = now
}

// Subscribe registers a handler for one event type.
func (d *Dispatcher) Subscribe(t EventType, h Handler) {
	d.handlers[t] = append(d.handlers[t], h)
}

// Emit stamps the event with the dispatcher clock, appends it to the
// log, and invokes every subscribed handler in subscription order.
func (d *Dispatcher) Emit(e Event) {
	e.Timestamp = d.now
	d.log = append(d.log, e)
	for _, h := range d.handlers[e.Type] {
		h(e)
	}
}

// Log returns a copy of the event log.
func (d *Dispatcher) Log() []Event {
	out := make([]Event, len(d.log))
	copy(out, d.log)
	return out
}

// ClearLog drops the accumulated event log.
func (d *Dispatcher) ClearLog() {
	d.log = d.log[:0]
}
