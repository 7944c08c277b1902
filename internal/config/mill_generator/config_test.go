package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Start())
	assert.Equal(t, 2.5, cfg.DurationYears)
	assert.Equal(t, []string{"M1", "M2", "M3", "M4", "M5", "M6"}, cfg.Units)
	assert.Equal(t, "molinos_mineraperu_dataset.csv", cfg.DatasetFile)
	assert.Equal(t, "failures", cfg.QueueName)
	assert.Empty(t, cfg.RabbitURI)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
start_date: "2024-03-01"
duration_years: 0.5
seed: 42
units: [M1, M4]
output_dir: /tmp/out
notify_url: http://recorder:8080/runs
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, []string{"M1", "M4"}, cfg.Units)
	assert.Equal(t, filepath.Join("/tmp/out", "condition_monitoring_view.csv"), cfg.Path(cfg.ConditionMonitoringFile))
	assert.Equal(t, 2024, cfg.Start().Year())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad date":        `start_date: "01/01/2023"`,
		"no horizon":      `duration_years: -1`,
		"bad notify":      `notify_url: "not a url"`,
		"duplicate units": `units: [M1, M1]`,
		"missing file":    "",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.yaml")
			if body != "" {
				path = writeConfig(t, body)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
