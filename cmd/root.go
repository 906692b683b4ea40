package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/foundry-sim/foundry-sim/sim"
	"github.com/foundry-sim/foundry-sim/sim/telemetry"
)

var (
	seed        int64   // Master seed for all stochastic subsystems
	ticks       int     // Number of fixed-size steps to simulate
	timeStep    float64 // Override of the configured tick size (seconds)
	logLevel    string  // Log verbosity level
	plantConfig string  // Path to a plant YAML; empty uses the reference line
	metricsAddr string  // Prometheus listen address; empty disables the listener
	realTime    bool    // Pace ticks at wall-clock speed
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "foundry-sim",
	Short: "Deterministic digital twin of an aluminum casting and machining line",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the plant simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := sim.DefaultPlantConfig()
		if plantConfig != "" {
			cfg, err = LoadPlantConfig(plantConfig)
			if err != nil {
				logrus.Fatalf("unable to load plant config: %v", err)
			}
		}
		if timeStep > 0 {
			cfg.TimeStep = timeStep
		}

		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
		engine, err := sim.BuildPlant(cfg, rng)
		if err != nil {
			logrus.Fatalf("unable to build plant: %v", err)
		}
		if err := engine.StartAll(); err != nil {
			logrus.Fatalf("unable to start plant: %v", err)
		}

		sessionID := uuid.NewString()
		logrus.Infof("session %s: %d machines, seed=%d, dt=%.3fs, %d ticks",
			sessionID, len(engine.Machines()), seed, cfg.TimeStep, ticks)

		exporter := startMetricsListener(engine)

		startTime := time.Now()
		pace := time.Duration(cfg.TimeStep * float64(time.Second))
		for i := 0; i < ticks; i++ {
			if err := engine.Step(); err != nil {
				logrus.Fatalf("simulation aborted at tick %d: %v", i, err)
			}
			if exporter != nil && engine.Ticks()%50 == 0 {
				exporter.Observe(engine.ProductionMetrics())
			}
			if realTime {
				time.Sleep(pace)
			}
		}

		fmt.Print(engine.ProductionMetrics())
		logrus.Infof("session %s: simulated %.1fs of plant time in %v",
			sessionID, engine.Now(), time.Since(startTime))
	},
}

// startMetricsListener serves Prometheus metrics when --metrics-addr is
// set. Returns nil when disabled.
func startMetricsListener(engine *sim.Engine) *telemetry.Exporter {
	if metricsAddr == "" {
		return nil
	}
	reg := prometheus.NewRegistry()
	exporter := telemetry.NewExporter(reg)
	go func() {
		handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		if err := http.ListenAndServe(metricsAddr, handler); err != nil {
			logrus.Errorf("metrics listener: %v", err)
		}
	}()
	logrus.Infof("serving Prometheus metrics on %s", metricsAddr)
	return exporter
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for scrap and yield draws")
	runCmd.Flags().IntVar(&ticks, "ticks", 18000, "Number of simulation steps (18000 = 1h at 0.2s)")
	runCmd.Flags().Float64Var(&timeStep, "time-step", 0, "Tick size in seconds (0 keeps the configured value)")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&plantConfig, "plant-config", "", "Path to a plant description YAML")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus listen address (e.g. :9100), empty disables")
	runCmd.Flags().BoolVar(&realTime, "real-time", false, "Pace the simulation at wall-clock speed")

	rootCmd.AddCommand(runCmd)
}
