package flow

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(seed int64) (*Dispatcher, *Engine) {
	d := NewDispatcher()
	e := NewEngine(d, rand.New(rand.NewSource(seed)))
	return d, e
}

func part(id string) map[string]string {
	return map[string]string{"part_id": id}
}

func TestEngine_IngotEntersMeltingQueue(t *testing.T) {
	d, e := newTestEngine(42)
	d.SetClock(0)

	d.Emit(Event{Type: IngotReceived, DeviceID: "m_inbound", Data: part("part_001")})

	assert.Equal(t, 1, e.Counters.Get("inbound_received"))
	assert.Equal(t, 1, e.WIP.Count("melting_queue"))
	assert.Equal(t, []string{"part_001"}, e.WIP.Parts("melting_queue"))
}

func TestEngine_PartTravelsThroughStages(t *testing.T) {
	d, e := newTestEngine(42)
	d.SetClock(0)

	d.Emit(Event{Type: IngotReceived, DeviceID: "m_inbound", Data: part("part_001")})
	d.SetClock(10)
	d.Emit(Event{Type: LPDCCycleComplete, DeviceID: "m_lpdc", Data: part("part_001")})

	assert.Equal(t, 1, e.Counters.Get("lpdc_cast"))
	// The part either advanced to heat treatment or was scrapped by the
	// yield draw; it must not stay in the LPDC bucket.
	assert.Equal(t, 0, e.WIP.Count("lpdc_queue"))
	assert.Equal(t, 1, e.WIP.Count("heat_treatment_queue")+e.Counters.Get("lpdc_scrap"))

	d.SetClock(20)
	d.Emit(Event{Type: CNCCycleComplete, DeviceID: "m_cnc", Data: part("part_001")})
	assert.Equal(t, 1, e.Counters.Get("cnc_machined"))
}

func TestEngine_InPlaceStagesLeaveWIPUntouched(t *testing.T) {
	d, e := newTestEngine(42)
	d.SetClock(0)

	d.Emit(Event{Type: IngotReceived, DeviceID: "m_inbound", Data: part("p1")})
	before := e.WIP.Counts()

	// Quench and pretreatment run in place on the orchestrated path;
	// their completions count but move nothing between buckets.
	d.Emit(Event{Type: CoolingComplete, DeviceID: "m_cooling1", Data: part("p1")})
	d.Emit(Event{Type: PretreatmentComplete, DeviceID: "m_pretreat", Data: part("p1")})

	assert.Equal(t, 1, e.Counters.Get("cooling_complete"))
	assert.Equal(t, 1, e.Counters.Get("pretreatment_complete"))
	assert.Equal(t, before, e.WIP.Counts())
	assert.Equal(t, 1, e.WIP.Total())
}

func TestEngine_InspectionFailIsScrap(t *testing.T) {
	d, e := newTestEngine(42)
	d.SetClock(0)

	d.Emit(Event{Type: InspectionPass, DeviceID: "m_inspect", Data: part("p1")})
	d.Emit(Event{Type: InspectionFail, DeviceID: "m_inspect", Data: part("p2")})

	assert.Equal(t, 1, e.Counters.Get("inspection_pass"))
	assert.Equal(t, 1, e.Counters.Get("inspection_fail"))
	snap := e.Metrics(100)
	assert.Equal(t, 1, snap.ScrapCount)
}

func TestEngine_KPISnapshot(t *testing.T) {
	d, e := newTestEngine(42)
	e.KPIs.SetStartTime(0)

	for i := 0; i < 4; i++ {
		d.SetClock(float64(i) * 100)
		d.Emit(Event{Type: IngotReceived, DeviceID: "m_inbound", Data: part("p")})
		d.Emit(Event{Type: InspectionPass, DeviceID: "m_inspect", Data: part("p")})
		d.Emit(Event{Type: PackingComplete, DeviceID: "m_pack", Data: part("p")})
	}

	snap := e.Metrics(3600)
	assert.Equal(t, 4, snap.TotalIn)
	assert.Equal(t, 4, snap.TotalProduced)
	assert.InDelta(t, 100.0, snap.YieldPercent, 1e-9)
	assert.InDelta(t, 4.0, snap.ThroughputPerHr, 1e-9)
	// Completions at t=0,100,200,300: mean interval 100 s.
	assert.InDelta(t, 100.0, snap.CompletionIntervalMean, 1e-9)
}

func TestEngine_SameSeedSameCounters(t *testing.T) {
	run := func(seed int64) map[string]int {
		d, e := newTestEngine(seed)
		d.SetClock(0)
		for i := 0; i < 200; i++ {
			d.Emit(Event{Type: LPDCCycleComplete, DeviceID: "m_lpdc", Data: part("p")})
			d.Emit(Event{Type: HeatTreatmentComplete, DeviceID: "m_heat", Data: part("p")})
			d.Emit(Event{Type: CNCCycleComplete, DeviceID: "m_cnc", Data: part("p")})
			d.Emit(Event{Type: PaintComplete, DeviceID: "m_paint1", Data: part("p")})
		}
		return e.Counters.All()
	}

	require.Equal(t, run(42), run(42), "same seed must reproduce identical counters")
	assert.NotEqual(t, run(42), run(7), "different seeds should diverge over 800 draws")
}

func TestDispatcher_HandlersRunInSubscriptionOrder(t *testing.T) {
	d := NewDispatcher()
	var order []int
	d.Subscribe(PaintComplete, func(Event) { order = append(order, 1) })
	d.Subscribe(PaintComplete, func(Event) { order = append(order, 2) })
	d.Subscribe(PaintComplete, func(Event) { order = append(order, 3) })

	d.Emit(Event{Type: PaintComplete})
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestDispatcher_LogIsAppendOnlyAndStamped(t *testing.T) {
	d := NewDispatcher()
	d.SetClock(12.4)
	d.Emit(Event{Type: IngotReceived, DeviceID: "m_inbound"})
	d.SetClock(12.6)
	d.Emit(Event{Type: PaintComplete, DeviceID: "m_paint1"})

	log := d.Log()
	require.Len(t, log, 2)
	assert.Equal(t, 12.4, log[0].Timestamp)
	assert.Equal(t, 12.6, log[1].Timestamp)

	// The returned slice is a copy.
	log[0].DeviceID = "tampered"
	assert.Equal(t, "m_inbound", d.Log()[0].DeviceID)

	d.ClearLog()
	assert.Empty(t, d.Log())
}
