// Package telemetry publishes plant KPIs as Prometheus metrics.
//
// The exporter is a pure observer on the driver side of the tick loop:
// it reads ProductionMetrics snapshots and never touches live
// simulation state, so scrape timing cannot influence a run.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/foundry-sim/foundry-sim/sim"
)

// Exporter maps production snapshots onto Prometheus gauges.
type Exporter struct {
	simTime    prometheus.Gauge
	batchID    prometheus.Gauge
	produced   prometheus.Gauge
	scrap      prometheus.Gauge
	yield      prometheus.Gauge
	throughput prometheus.Gauge
	batches    prometheus.Gauge

	wip *prometheus.GaugeVec

	flowWIP   prometheus.Gauge
	flowGood  prometheus.Gauge
	flowScrap prometheus.Gauge
	flowYield prometheus.Gauge
}

// NewExporter builds and registers the plant collectors.
func NewExporter(reg prometheus.Registerer) *Exporter {
	e := &Exporter{
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foundry_sim_time_seconds",
			Help: "Simulation clock in seconds.",
		}),
		batchID: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foundry_batch_id",
			Help: "Identifier of the ingot batch currently being consumed.",
		}),
		produced: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foundry_parts_produced_total",
			Help: "Finished parts handed to shipping this session.",
		}),
		scrap: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foundry_scrap_total",
			Help: "Parts scrapped this session.",
		}),
		yield: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foundry_yield_percent",
			Help: "Produced / (produced + scrap) x 100.",
		}),
		throughput: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foundry_throughput_parts_per_hour",
			Help: "Produced parts per elapsed simulation hour.",
		}),
		batches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foundry_batches_completed_total",
			Help: "Ingot batches fully consumed this session.",
		}),
		wip: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "foundry_wip",
			Help: "Work-in-progress ledger by stage key (kg or parts).",
		}, []string{"key"}),
		flowWIP: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foundry_flow_wip_total",
			Help: "In-flight parts tracked by the event-sourced audit view.",
		}),
		flowGood: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foundry_flow_good_total",
			Help: "Parts the audit view counted as good output.",
		}),
		flowScrap: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foundry_flow_scrap_total",
			Help: "Parts the audit view counted as scrap.",
		}),
		flowYield: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foundry_flow_yield_percent",
			Help: "Yield percentage computed by the audit view.",
		}),
	}

	reg.MustRegister(
		e.simTime, e.batchID, e.produced, e.scrap, e.yield, e.throughput,
		e.batches, e.wip, e.flowWIP, e.flowGood, e.flowScrap, e.flowYield,
	)
	return e
}

// Observe publishes one snapshot.
func (e *Exporter) Observe(m sim.ProductionMetrics) {
	e.simTime.Set(m.SimTime)
	e.batchID.Set(float64(m.BatchID))
	e.produced.Set(float64(m.KPIs.TotalPartsProduced))
	e.scrap.Set(float64(m.KPIs.TotalScrap))
	e.yield.Set(m.KPIs.YieldPercent)
	e.throughput.Set(m.KPIs.ThroughputPartsPerHr)
	e.batches.Set(float64(m.KPIs.BatchesCompleted))

	for key, qty := range m.WIP {
		e.wip.WithLabelValues(key).Set(float64(qty))
	}

	e.flowWIP.Set(float64(m.Flow.WIPTotal))
	e.flowGood.Set(float64(m.Flow.GoodCount))
	e.flowScrap.Set(float64(m.Flow.ScrapCount))
	e.flowYield.Set(m.Flow.YieldPercent)
}
