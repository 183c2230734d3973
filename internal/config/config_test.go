package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults are valid without a file", func(t *testing.T) {
		t.Setenv(configFileEnv, "")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 64, cfg.Decode.MaxDepth)
		assert.Equal(t, 1<<20, cfg.Decode.MaxNodes)
		assert.Equal(t, "strict", cfg.Decode.IDPolicy)
		assert.Equal(t, ":4317", cfg.Receiver.GRPCAddress)
		assert.Equal(t, 10*time.Second, cfg.Report.Timeout)
		assert.Empty(t, cfg.Elasticsearch.Addresses)
	})

	t.Run("File values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "otk.yaml")
		content := "decode:\n  id_policy: pad\n  max_depth: 16\nreport:\n  host: collector\n  port: 4318\n  protocol: http\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "pad", cfg.Decode.IDPolicy)
		assert.Equal(t, 16, cfg.Decode.MaxDepth)
		assert.Equal(t, "collector", cfg.Report.Host)
		assert.Equal(t, 4318, cfg.Report.Port)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "otk.yaml")
		require.NoError(t, os.WriteFile(path, []byte("report:\n  host: collector\n"), 0o600))
		t.Setenv("OTK_REPORT_HOST", "from-env")
		t.Setenv("OTK_REPORT_PORT", "5317")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Report.Host)
		assert.Equal(t, 5317, cfg.Report.Port)
	})

	t.Run("Config file can come from the environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "otk.yaml")
		require.NoError(t, os.WriteFile(path, []byte("kafka:\n  signal: logs\n"), 0o600))
		t.Setenv(configFileEnv, path)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "logs", cfg.Kafka.Signal)
	})

	t.Run("Validation errors name the field", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "otk.yaml")
		require.NoError(t, os.WriteFile(path, []byte("decode:\n  id_policy: loose\n"), 0o600))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Config.Decode.IDPolicy")
		assert.Contains(t, err.Error(), "must be one of [strict pad]")
	})

	t.Run("Missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
