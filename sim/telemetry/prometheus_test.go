package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundry-sim/foundry-sim/sim"
	"github.com/foundry-sim/foundry-sim/sim/flow"
)

func TestExporter_ObservePublishesSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter(reg)

	e.Observe(sim.ProductionMetrics{
		SimTime: 120.4,
		BatchID: 3,
		WIP: map[string]int{
			sim.WIPIngotsKg:  40,
			sim.WIPCastParts: 2,
		},
		KPIs: sim.KPIMetrics{
			TotalPartsProduced:   9,
			TotalScrap:           1,
			YieldPercent:         90.0,
			ThroughputPartsPerHr: 27.5,
			BatchesCompleted:     2,
		},
		Flow: flow.KPIs{
			WIPTotal:     5,
			GoodCount:    8,
			ScrapCount:   2,
			YieldPercent: 80.0,
		},
	})

	assert.Equal(t, 120.4, testutil.ToFloat64(e.simTime))
	assert.Equal(t, 9.0, testutil.ToFloat64(e.produced))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.scrap))
	assert.Equal(t, 90.0, testutil.ToFloat64(e.yield))
	assert.Equal(t, 40.0, testutil.ToFloat64(e.wip.WithLabelValues(sim.WIPIngotsKg)))
	assert.Equal(t, 5.0, testutil.ToFloat64(e.flowWIP))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestExporter_ObserveFromLiveEngine(t *testing.T) {
	eng, err := sim.BuildPlant(sim.DefaultPlantConfig(), sim.NewPartitionedRNG(sim.NewSimulationKey(1)))
	require.NoError(t, err)
	require.NoError(t, eng.StartAll())
	require.NoError(t, eng.Run(100))

	reg := prometheus.NewRegistry()
	e := NewExporter(reg)
	e.Observe(eng.ProductionMetrics())

	assert.InDelta(t, 20.0, testutil.ToFloat64(e.simTime), 1e-9, "100 ticks at 0.2s")
}
