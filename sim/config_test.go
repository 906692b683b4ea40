package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPlantConfig_IsValid(t *testing.T) {
	cfg := DefaultPlantConfig()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Machines, 15)
	assert.Equal(t, 0.2, cfg.TimeStep)
}

func TestPlantConfig_ValidateRejections(t *testing.T) {
	base := func() PlantConfig { return DefaultPlantConfig() }

	tests := []struct {
		name   string
		mutate func(*PlantConfig)
	}{
		{"zero time step", func(c *PlantConfig) { c.TimeStep = 0 }},
		{"negative inbound", func(c *PlantConfig) { c.InboundParts = -1 }},
		{"no machines", func(c *PlantConfig) { c.Machines = nil }},
		{"empty id", func(c *PlantConfig) { c.Machines[0].ID = "" }},
		{"duplicate id", func(c *PlantConfig) { c.Machines[1].ID = c.Machines[0].ID }},
		{"unknown type", func(c *PlantConfig) { c.Machines[0].Type = "teleporter" }},
		{"zero cycle time", func(c *PlantConfig) { c.Machines[0].CycleTime = 0 }},
		{"buffer without capacity", func(c *PlantConfig) {
			c.Machines[1].Capacity = 0 // m_storage
		}},
		{"fail rate above one", func(c *PlantConfig) {
			for i := range c.Machines {
				if c.Machines[i].Type == TypeInspection {
					c.Machines[i].FailRate = 1.5
				}
			}
		}},
		{"unknown completion event", func(c *PlantConfig) {
			c.Machines[0].CompletionEvent = "WARP_DRIVE_ENGAGED"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
