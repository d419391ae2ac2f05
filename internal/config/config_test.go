package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/scanalign/internal/fsutil"
	"github.com/banshee-data/scanalign/internal/registration"
)

func memFS(t *testing.T, files map[string]string) *fsutil.MemoryFileSystem {
	t.Helper()
	fsys := fsutil.NewMemoryFileSystem()
	for name, body := range files {
		require.NoError(t, fsys.WriteFile(name, []byte(body), 0o644))
	}
	return fsys
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := &Config{}

	assert.Equal(t, registration.DefaultMinOverlap, cfg.GetMinOverlap())
	assert.Equal(t, DefaultWorkers, cfg.GetWorkers())
	assert.Equal(t, DefaultWatchDebounce, cfg.GetWatchDebounce())
	assert.Equal(t, DefaultPlotWidthCm, cfg.GetPlotWidthCm())
	assert.Equal(t, "", cfg.GetDBPath())
	assert.Equal(t, DefaultLogLevel, cfg.GetLogLevel())
	assert.False(t, cfg.GetLogJSON())
	assert.Equal(t, registration.DefaultConfig(), cfg.EngineConfig())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Formats(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"cfg.json": `{"min_overlap": 6, "workers": 4, "watch_debounce": "250ms", "db_path": "runs.db"}`,
		"cfg.toml": "min_overlap = 6\nworkers = 4\nwatch_debounce = \"250ms\"\ndb_path = \"runs.db\"\n",
		"cfg.yaml": "min_overlap: 6\nworkers: 4\nwatch_debounce: 250ms\ndb_path: runs.db\n",
		"cfg.YML":  "min_overlap: 6\nworkers: 4\nwatch_debounce: 250ms\ndb_path: runs.db\n",
	})

	for _, name := range []string{"cfg.json", "cfg.toml", "cfg.yaml", "cfg.YML"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(fsys, name)
			require.NoError(t, err)
			assert.Equal(t, 6, cfg.GetMinOverlap())
			assert.Equal(t, 4, cfg.GetWorkers())
			assert.Equal(t, 250*time.Millisecond, cfg.GetWatchDebounce())
			assert.Equal(t, "runs.db", cfg.GetDBPath())
			// Unset fields keep their defaults.
			assert.Equal(t, DefaultPlotWidthCm, cfg.GetPlotWidthCm())
			assert.Equal(t, registration.Config{MinOverlap: 6, Workers: 4}, cfg.EngineConfig())
		})
	}
}

func TestLoad_EmptyYAML(t *testing.T) {
	cfg, err := Load(memFS(t, map[string]string{"empty.yaml": ""}), "empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, registration.DefaultMinOverlap, cfg.GetMinOverlap())
}

func TestLoad_Errors(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"cfg.ini":        "min_overlap=3",
		"unknown.json":   `{"min_overlaps": 3}`,
		"unknown.toml":   "min_overlaps = 3\n",
		"unknown.yaml":   "min_overlaps: 3\n",
		"bad.json":       `{"min_overlap": "twelve"}`,
		"zero.json":      `{"min_overlap": 0}`,
		"workers.toml":   "workers = 0\n",
		"debounce.yaml":  "watch_debounce: soon\n",
		"negative.json":  `{"watch_debounce": "-1s"}`,
		"plotwidth.json": `{"plot_width_cm": 0}`,
	})

	tests := []struct {
		path    string
		wantMsg string
	}{
		{"missing.json", "failed to read config file"},
		{"cfg.ini", "must be .json"},
		{"unknown.json", "failed to parse"},
		{"unknown.toml", "failed to parse"},
		{"unknown.yaml", "failed to parse"},
		{"bad.json", "failed to parse"},
		{"zero.json", "min_overlap must be at least 1"},
		{"workers.toml", "workers must be at least 1"},
		{"debounce.yaml", "invalid watch_debounce"},
		{"negative.json", "watch_debounce must be non-negative"},
		{"plotwidth.json", "plot_width_cm must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := Load(fsys, tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_TooLarge(t *testing.T) {
	big := make([]byte, maxFileSize+1)
	for i := range big {
		big[i] = ' '
	}
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("big.json", big, 0o644))

	_, err := Load(fsys, "big.json")
	assert.ErrorIs(t, err, fsutil.ErrTooLarge)
}

func TestLoad_DefaultsFile(t *testing.T) {
	path := filepath.Join("..", "..", DefaultConfigPath)
	if _, err := os.Stat(path); err != nil {
		t.Skipf("defaults file not found: %v", err)
	}

	cfg, err := Load(fsutil.OSFileSystem{}, path)
	require.NoError(t, err)
	assert.Equal(t, registration.DefaultMinOverlap, cfg.GetMinOverlap())
	assert.Equal(t, DefaultWorkers, cfg.GetWorkers())
	assert.Equal(t, DefaultWatchDebounce, cfg.GetWatchDebounce())
	assert.Equal(t, DefaultLogLevel, cfg.GetLogLevel())
}

func TestGetWatchDebounce_Unparseable(t *testing.T) {
	bad := "later"
	cfg := &Config{WatchDebounce: &bad}
	assert.Equal(t, DefaultWatchDebounce, cfg.GetWatchDebounce())
	assert.Error(t, cfg.Validate())
}
