package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func cleanEnv(t *testing.T) {
	unsetEnv(t, "KPI_SOURCE", "KPI_DATA_DIR", "KPI_DSN", "KPI_TABLE", "KPI_TOP_N", "LOG_LEVEL",
		"KPI_REPORT__TOP_N", "KPI_REPORT__DELIVERED_ONLY")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, SourceCSV, cfg.Data.Source)
	assert.Equal(t, "ecommerce_data", cfg.Data.Dir)
	assert.Equal(t, "sales_line_items", cfg.Data.Table)
	assert.Equal(t, 10, cfg.Report.TopN)
	assert.True(t, cfg.Report.DeliveredOnly)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.False(t, cfg.Logger.Progress)
}

func TestLoadConfig_File(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), "kpi.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[data]
source = "db"
dsn = "sqlite://kpi.db"

[report]
top_n = 3
period_label = "2023"
delivered_only = false

[logger]
progress = true
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, SourceDB, cfg.Data.Source)
	assert.Equal(t, "sqlite://kpi.db", cfg.Data.DSN)
	assert.Equal(t, 3, cfg.Report.TopN)
	assert.Equal(t, "2023", cfg.Report.PeriodLabel)
	assert.False(t, cfg.Report.DeliveredOnly)
	assert.True(t, cfg.Logger.Progress)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), "kpi.toml")
	require.NoError(t, os.WriteFile(path, []byte("[report]\ntop_n = 3\n"), 0o644))

	t.Setenv("KPI_SOURCE", "db")
	t.Setenv("KPI_DSN", "mysql://u:p@localhost:3306/olist")
	t.Setenv("KPI_REPORT__TOP_N", "7")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, SourceDB, cfg.Data.Source)
	assert.Equal(t, "mysql://u:p@localhost:3306/olist", cfg.Data.DSN)
	assert.Equal(t, 7, cfg.Report.TopN)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	cleanEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("KPI_DATA_DIR=/srv/olist\n"), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/olist", cfg.Data.Dir)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cleanEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	ok := Config{Data: DataConfig{Source: SourceCSV, Dir: "data"}}
	require.NoError(t, ok.Validate())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown source", Config{Data: DataConfig{Source: "ftp"}}},
		{"csv without dir", Config{Data: DataConfig{Source: SourceCSV}}},
		{"db without dsn", Config{Data: DataConfig{Source: SourceDB}}},
		{"negative top n", Config{Data: DataConfig{Source: SourceCSV, Dir: "d"}, Report: ReportConfig{TopN: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestInitLogger(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	InitLogger("warn", &buf)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	InitLogger("nonsense", &buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
