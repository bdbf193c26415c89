package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	return dir
}

func TestLoad_NoFileGivesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultRPCAddr, cfg.RPCAddr)
	assert.Equal(t, DefaultMCPAddr, cfg.MCPAddr)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Zero(t, cfg.BunchGap)
}

func TestLoad_ReadsYML(t *testing.T) {
	dir := writeConfig(t, "stageresults.yml", `
rpcAddr: ":9000"
store:
  backend: kuzu
  path: /var/lib/stageresults
fixture: testdata/fixtures/tour.yaml
bunchGap: 1500ms
verbose: true
`)
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.RPCAddr)
	assert.Equal(t, DefaultMCPAddr, cfg.MCPAddr)
	assert.Equal(t, StoreConfig{Backend: BackendKuzu, Path: "/var/lib/stageresults"}, cfg.Store)
	assert.Equal(t, "testdata/fixtures/tour.yaml", cfg.Fixture)
	assert.Equal(t, 1500*time.Millisecond, cfg.BunchGap)
	assert.True(t, cfg.Verbose)
}

func TestLoad_FallsBackToYAMLExtension(t *testing.T) {
	dir := writeConfig(t, "stageresults.yaml", "verbose: true\n")
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]string{
		"bad yaml":    "rpcAddr: [",
		"bad backend": "store:\n  backend: postgres\n",
		"bad gap":     "bunchGap: -1s\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "stageresults.yml", body))
			assert.Error(t, err)
		})
	}
}
