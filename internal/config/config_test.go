package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil, "empty")
	require.NoError(t, err)
	assert.Equal(t, "poold", cfg.Server.Name)
	assert.Equal(t, 200*time.Millisecond, cfg.World.TickRate)
	assert.Equal(t, "data/templates.yaml", cfg.Data.Templates)
	assert.True(t, cfg.Scripting.Enabled)
	assert.False(t, cfg.Database.Enabled)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestParse_Overrides(t *testing.T) {
	src := `
[world]
tick_rate = "50ms"
max_ticks = 20
stats_interval = 5

[scripting]
enabled = false

[database]
enabled = true
dsn = "postgres://x@db/poold"
conn_max_lifetime = "1m"

[logging]
level = "debug"
format = "json"
`
	cfg, err := Parse([]byte(src), "inline")
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, cfg.World.TickRate)
	assert.Equal(t, uint64(20), cfg.World.MaxTicks)
	assert.Equal(t, 5, cfg.World.StatsInterval)
	assert.False(t, cfg.Scripting.Enabled)
	assert.Equal(t, "scripts", cfg.Scripting.Dir)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"syntax":    `[world`,
		"tick rate": "[world]\ntick_rate = \"0s\"",
		"stats":     "[world]\nstats_interval = -1",
		"templates": "[data]\ntemplates = \"\"",
		"dsn":       "[database]\nenabled = true\ndsn = \"\"",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src), name)
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poold.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nname = \"east\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "east", cfg.Server.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
