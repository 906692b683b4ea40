package sim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/foundry-sim/foundry-sim/sim/flow"
)

// ProductionMetrics is the structured WIP and KPI snapshot handed to
// external layers (CLI report, telemetry exporters).
type ProductionMetrics struct {
	SimTime float64
	Ticks   uint64
	BatchID int

	WIP  map[string]int
	KPIs KPIMetrics

	// Flow is the event-sourced audit view; it tracks the same line from
	// discrete events and may legitimately disagree with the WIP ledger
	// in the small.
	Flow flow.KPIs
}

// String renders a human-readable production report.
func (m ProductionMetrics) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Production Report (t=%.1fs, %d ticks, batch %d) ===\n",
		m.SimTime, m.Ticks, m.BatchID)

	fmt.Fprintf(&sb, "KPIs: produced=%d scrap=%d yield=%.1f%% throughput=%.2f/hr batches=%d ingots=%dkg\n",
		m.KPIs.TotalPartsProduced, m.KPIs.TotalScrap, m.KPIs.YieldPercent,
		m.KPIs.ThroughputPartsPerHr, m.KPIs.BatchesCompleted, m.KPIs.TotalIngotsConsumedKg)

	keys := make([]string, 0, len(m.WIP))
	for k := range m.WIP {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sb.WriteString("WIP:")
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%d", k, m.WIP[k])
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Flow audit: in=%d out=%d good=%d scrap=%d yield=%.1f%% wip=%d\n",
		m.Flow.TotalIn, m.Flow.TotalProduced, m.Flow.GoodCount, m.Flow.ScrapCount,
		m.Flow.YieldPercent, m.Flow.WIPTotal)
	return sb.String()
}
