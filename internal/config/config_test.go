package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "sheet2ics.yaml", `
output: out/events
timezone: Europe/Berlin
alert_minutes: 45
caldav:
  endpoint: https://caldav.example.com/
  calendar: Work
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out/events", cfg.OutputDir)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, 45, cfg.AlertMinutes)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.True(t, cfg.CalDAV.Enabled())
	assert.Equal(t, "Work", cfg.CalDAV.CalendarName)
}

func TestLoadTOMLKeepsDefaults(t *testing.T) {
	path := writeFile(t, "sheet2ics.toml", `
sheet = "Events"
dry_run = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Events", cfg.Sheet)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, DefaultAlertMinutes, cfg.AlertMinutes)
	assert.False(t, cfg.CalDAV.Enabled())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "config.json", "{}"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(writeFile(t, "bad.yaml", "output: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse")
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.Timezone = "Mars/Olympus_Mons"
	_, err = cfg.Location()
	assert.ErrorContains(t, err, "invalid timezone")
}
