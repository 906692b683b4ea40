package flow

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// KPIs is the read-only metrics snapshot derived from counters and the
// WIP tracker. It is computed on demand and never consulted by control
// logic.
type KPIs struct {
	TotalIn       int
	TotalProduced int
	GoodCount     int
	ScrapCount    int

	YieldPercent     float64
	ScrapRatePercent float64
	ThroughputPerHr  float64

	WIPTotal   int
	WIPByStage map[string]int

	// Completion interval statistics over PACKING_COMPLETE events,
	// in seconds. Zero when fewer than two completions happened.
	CompletionIntervalMean float64
	CompletionIntervalP95  float64
}

// KPITracker derives production KPIs from the counter set and WIP
// tracker. Pure observer: it holds no control state and its outputs must
// never feed back into flow decisions.
type KPITracker struct {
	counters  *Counters
	wip       *WIPTracker
	startTime float64

	completionTimes []float64 // timestamps of PACKING_COMPLETE events
}

// NewKPITracker builds a tracker over the given counters and WIP state.
func NewKPITracker(counters *Counters, wip *WIPTracker) *KPITracker {
	return &KPITracker{counters: counters, wip: wip}
}

// SetStartTime records the session start used for throughput.
func (k *KPITracker) SetStartTime(t float64) {
	k.startTime = t
}

// RecordCompletion notes the simulation time of one packed part.
func (k *KPITracker) RecordCompletion(t float64) {
	k.completionTimes = append(k.completionTimes, t)
}

// Yield returns good output over total input, in percent.
func (k *KPITracker) Yield() float64 {
	totalIn := k.counters.Get("inbound_received")
	if totalIn == 0 {
		return 0
	}
	return float64(k.counters.Get("inspection_pass")) / float64(totalIn) * 100
}

// Throughput returns packed parts per hour since the session start.
func (k *KPITracker) Throughput(now float64) float64 {
	elapsedHr := (now - k.startTime) / 3600.0
	if elapsedHr <= 0 {
		return 0
	}
	return float64(k.counters.Get("packing_complete")) / elapsedHr
}

// ScrapRate returns the share of input that ended as scrap, in percent.
// Every counter whose name marks a reject contributes.
func (k *KPITracker) ScrapRate() float64 {
	totalIn := k.counters.Get("inbound_received")
	if totalIn == 0 {
		return 0
	}
	return float64(k.scrapTotal()) / float64(totalIn) * 100
}

func (k *KPITracker) scrapTotal() int {
	total := 0
	for name, count := range k.counters.All() {
		if isScrapCounter(name) {
			total += count
		}
	}
	return total
}

func isScrapCounter(name string) bool {
	return strings.HasSuffix(name, "_scrap") || strings.HasSuffix(name, "_fail")
}

// Snapshot computes the full KPI set at the given simulation time.
func (k *KPITracker) Snapshot(now float64) KPIs {
	snap := KPIs{
		TotalIn:          k.counters.Get("inbound_received"),
		TotalProduced:    k.counters.Get("packing_complete"),
		GoodCount:        k.counters.Get("inspection_pass"),
		ScrapCount:       k.scrapTotal(),
		YieldPercent:     k.Yield(),
		ScrapRatePercent: k.ScrapRate(),
		ThroughputPerHr:  k.Throughput(now),
		WIPTotal:         k.wip.Total(),
		WIPByStage:       k.wip.Counts(),
	}

	if len(k.completionTimes) >= 2 {
		intervals := make([]float64, 0, len(k.completionTimes)-1)
		for i := 1; i < len(k.completionTimes); i++ {
			intervals = append(intervals, k.completionTimes[i]-k.completionTimes[i-1])
		}
		snap.CompletionIntervalMean = stat.Mean(intervals, nil)
		sort.Float64s(intervals)
		snap.CompletionIntervalP95 = stat.Quantile(0.95, stat.Empirical, intervals, nil)
	}
	return snap
}
