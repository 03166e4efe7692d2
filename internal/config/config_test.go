package config_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortelius/forkpoint-cves/internal/config"
)

func TestDefault(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Workers.Lanes)
	assert.Equal(t, uint64(5), cfg.Retry.MaxRetries)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, 2*time.Second, cfg.Catalog.PageDelay)
	assert.False(t, cfg.Matcher.EcosystemVersions)
	assert.Equal(t, "forkpoints.json", cfg.Files.ForkPoints)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg *config.Config)
		wantErr string
	}{
		{
			name: "partial override keeps other defaults",
			content: `
workers:
  lanes: 4
osv:
  url: http://localhost:8080
`,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 4, cfg.Workers.Lanes)
				assert.Equal(t, "http://localhost:8080", cfg.OSV.URL)
				assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
			},
		},
		{
			name: "durations parse",
			content: `
retry:
  base_delay: 250ms
catalog:
  page_delay: 0s
`,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay)
				assert.Equal(t, time.Duration(0), cfg.Catalog.PageDelay)
			},
		},
		{
			name:    "zero lanes rejected",
			content: "workers:\n  lanes: 0\n",
			wantErr: "workers.lanes must be >= 1",
		},
		{
			name:    "malformed yaml",
			content: "workers: [",
			wantErr: "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/etc/forkvuln.yaml", []byte(tt.content), 0o644))

			cfg, err := config.LoadFrom(fs, "/etc/forkvuln.yaml")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := config.LoadFrom(afero.NewMemMapFs(), "/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_Env(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml", []byte("workers:\n  lanes: 3\n"), 0o644))
	t.Setenv(config.EnvConfigFile, "/cfg.yaml")

	cfg, err := config.Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers.Lanes)
}
