package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/foundry-sim/foundry-sim/sim"
)

// LoadPlantConfig reads and validates a plant description from YAML.
func LoadPlantConfig(path string) (sim.PlantConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.PlantConfig{}, fmt.Errorf("read plant config: %w", err)
	}

	var cfg sim.PlantConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return sim.PlantConfig{}, fmt.Errorf("parse plant config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return sim.PlantConfig{}, err
	}
	return cfg, nil
}
