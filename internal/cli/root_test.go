package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	dbPath, configPath, logLevel, logFormat = "", "", "info", "text"
	t.Cleanup(func() {
		dbPath, configPath, logLevel, logFormat = "", "", "info", "text"
	})
}

func TestGetDBPath(t *testing.T) {
	resetFlags(t)

	t.Setenv("BIRDSWARM_DB", "/tmp/env.db")
	assert.Equal(t, "/tmp/env.db", getDBPath())

	dbPath = "/tmp/flag.db"
	assert.Equal(t, "/tmp/flag.db", getDBPath())

	dbPath = ""
	t.Setenv("BIRDSWARM_DB", "")
	assert.True(t, strings.HasSuffix(getDBPath(), filepath.Join(".birdswarm", "runs.db")))
}

func TestLoadConfig(t *testing.T) {
	resetFlags(t)
	t.Setenv("BIRDSWARM_CONFIG", "")
	t.Setenv("BIRDSWARM_SEED", "")
	t.Setenv("BIRDSWARM_TICKS", "")
	t.Setenv("BIRDSWARM_DT", "")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Greater(t, cfg.Birds(), 0)

	path := filepath.Join(t.TempDir(), "swarm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 42\nticks: 10\n"), 0o644))

	t.Setenv("BIRDSWARM_CONFIG", path)
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 10, cfg.Ticks)

	t.Setenv("BIRDSWARM_TICKS", "99")
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Ticks)

	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, loadEnv(filepath.Join(dir, "absent.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BIRDSWARM_TEST_VALUE=from-file\n"), 0o644))
	t.Setenv("BIRDSWARM_TEST_VALUE", "")
	os.Unsetenv("BIRDSWARM_TEST_VALUE")

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "from-file", os.Getenv("BIRDSWARM_TEST_VALUE"))
}

func TestNewLogger(t *testing.T) {
	resetFlags(t)

	logLevel, logFormat = "debug", "json"
	log, err := newLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	logLevel, logFormat = "warn", "text"
	log, err = newLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	logLevel = "loud"
	_, err = newLogger()
	assert.Error(t, err)

	logLevel, logFormat = "info", "xml"
	_, err = newLogger()
	assert.Error(t, err)
}
