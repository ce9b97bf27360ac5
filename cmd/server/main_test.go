package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/inventory-api/internal/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		debugOn   bool
		wantInOut string
	}{
		{"text info", config.LogConfig{Level: "info", Format: "text"}, false, "level=INFO"},
		{"text debug", config.LogConfig{Level: "DEBUG", Format: "text"}, true, "level=DEBUG"},
		{"json warn", config.LogConfig{Level: "warn", Format: "json"}, false, `"level":"WARN"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := slog.Default()
			t.Cleanup(func() { slog.SetDefault(prev) })

			var buf bytes.Buffer
			log := newLogger(&buf, tt.cfg)

			assert.Equal(t, tt.debugOn, log.Enabled(context.Background(), slog.LevelDebug))
			log.Debug("d")
			log.Info("i")
			log.Warn("w")
			assert.Contains(t, buf.String(), tt.wantInOut)
			assert.Same(t, log, slog.Default())
		})
	}
}

func TestEnsureDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	require.NoError(t, ensureDataDir(config.DBConfig{Driver: config.DriverSQLite, DSN: filepath.Join(dir, "inventory.db")}))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, ensureDataDir(config.DBConfig{Driver: config.DriverSQLite, DSN: ":memory:"}))
	assert.NoError(t, ensureDataDir(config.DBConfig{Driver: config.DriverPostgres, DSN: "postgres://localhost/x"}))
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate"}, names)
}

func TestMigrateCommand(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("JWT_SECRET_KEY", "migrate-test-secret-0123456789")

	dsn := filepath.Join(t.TempDir(), "data", "inventory.db")

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"migrate", "--db-dsn", dsn})

	require.NoError(t, root.ExecuteContext(context.Background()), out.String())
	assert.Contains(t, out.String(), "database is up to date")

	_, err := os.Stat(dsn)
	assert.NoError(t, err)
}

func TestMigrateCommand_InvalidConfig(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "short")

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"migrate", "--db-dsn", ":memory:"})

	require.Error(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "invalid configuration")
}
