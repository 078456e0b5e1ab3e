package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Data sources.
const (
	SourceCSV = "csv"
	SourceDB  = "db"
)

// DataConfig says where line items come from.
type DataConfig struct {
	Source string `mapstructure:"source"`
	Dir    string `mapstructure:"dir"`
	DSN    string `mapstructure:"dsn"`
	Table  string `mapstructure:"table"`
}

// ReportConfig holds report defaults, overridable per command.
type ReportConfig struct {
	TopN          int    `mapstructure:"top_n"`
	PeriodLabel   string `mapstructure:"period_label"`
	DeliveredOnly bool   `mapstructure:"delivered_only"`
}

// LoggerConfig controls log verbosity and progress bars.
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Progress bool   `mapstructure:"progress"`
}

// Config is the whole configuration of the kpi tool.
type Config struct {
	Data   DataConfig   `mapstructure:"data"`
	Report ReportConfig `mapstructure:"report"`
	Logger LoggerConfig `mapstructure:"logger"`
}

// LoadConfig reads .env, then cfgFile (optional, format from its extension),
// then the environment. Environment wins. Nested keys map to KPI_ prefixed
// names with "__", e.g. report.top_n -> KPI_REPORT__TOP_N; the common ones
// also have short names (KPI_DSN, KPI_DATA_DIR, LOG_LEVEL).
func LoadConfig(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env file unreadable, using process environment")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("KPI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))
	bindEnvVars(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("kpi")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.source", SourceCSV)
	v.SetDefault("data.dir", "ecommerce_data")
	v.SetDefault("data.dsn", "")
	v.SetDefault("data.table", "sales_line_items")
	v.SetDefault("report.top_n", 10)
	v.SetDefault("report.period_label", "")
	v.SetDefault("report.delivered_only", true)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.progress", false)
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("data.source", "KPI_SOURCE")
	_ = v.BindEnv("data.dir", "KPI_DATA_DIR")
	_ = v.BindEnv("data.dsn", "KPI_DSN")
	_ = v.BindEnv("data.table", "KPI_TABLE")
	_ = v.BindEnv("report.top_n", "KPI_TOP_N")
	_ = v.BindEnv("logger.level", "LOG_LEVEL")
}

// Validate rejects configurations no command could run with.
func (c Config) Validate() error {
	switch c.Data.Source {
	case SourceCSV:
		if c.Data.Dir == "" {
			return fmt.Errorf("data.dir is required for source %q", SourceCSV)
		}
	case SourceDB:
		if c.Data.DSN == "" {
			return fmt.Errorf("data.dsn is required for source %q", SourceDB)
		}
	default:
		return fmt.Errorf("unknown data.source %q (want %s or %s)", c.Data.Source, SourceCSV, SourceDB)
	}
	if c.Report.TopN < 0 {
		return fmt.Errorf("report.top_n must be >= 0, got %d", c.Report.TopN)
	}
	return nil
}
