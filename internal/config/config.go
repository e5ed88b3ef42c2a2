// Package config builds the validated pipeline configuration once at startup.
// Components receive the struct explicitly; there is no global state.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/secfsds/bronze/internal/domain"
)

// Config carries everything the pipeline needs for one invocation.
type Config struct {
	// DatabasePath is the file path of the SQLite analytic store.
	DatabasePath string

	// DataRoot contains one directory per quarter (e.g. DataRoot/2024q4).
	DataRoot string

	// Quarters lists the partitions to load, processed in order.
	Quarters []string

	// FileTypes restricts which extracts are loaded. Empty means all four.
	FileTypes []domain.FileType

	LogLevel  string
	LogFormat string

	// ReportDir receives exported audit reports.
	ReportDir string
}

// Load reads config.yaml from configPath with environment overrides
// (BRONZE_DATABASE_PATH, BRONZE_DATA_ROOT, ...). A .env file next to the
// working directory is honored when present.
func Load(configPath string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("BRONZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("report.dir", "reports")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		// No config.yaml: defaults plus env vars.
	}

	cfg := Config{
		DatabasePath: v.GetString("database.path"),
		DataRoot:     v.GetString("data.root"),
		Quarters:     v.GetStringSlice("data.quarters"),
		LogLevel:     v.GetString("log.level"),
		LogFormat:    v.GetString("log.format"),
		ReportDir:    v.GetString("report.dir"),
	}

	for _, raw := range v.GetStringSlice("data.file_types") {
		ft, err := domain.ParseFileType(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid config: %w", err)
		}
		cfg.FileTypes = append(cfg.FileTypes, ft)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration defects. These are fatal at startup.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("invalid config: database.path is required")
	}
	if strings.TrimSpace(c.DataRoot) == "" {
		return fmt.Errorf("invalid config: data.root is required")
	}
	if len(c.Quarters) == 0 {
		return fmt.Errorf("invalid config: data.quarters must list at least one quarter")
	}
	for _, q := range c.Quarters {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("invalid config: empty quarter identifier")
		}
	}
	return nil
}
