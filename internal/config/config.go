package config

import (
	"os"
	"strconv"
	"time"

	"flareshield/adapters/synthetic"
	"flareshield/app"
	"flareshield/domain/mcmc"
	"flareshield/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	MCMC   mcmc.Config
	Data   DataConfig
	Runner RunnerConfig
	Server ServerConfig
	Ops    OpsConfig
}

// DataConfig controls synthetic data generation
type DataConfig struct {
	PointCount int     `yaml:"point_count"`
	TMax       float64 `yaml:"t_max"`
}

// RunnerConfig holds the step cadence for background runs
type RunnerConfig struct {
	StepInterval time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// OpsConfig holds the metrics/pprof listener settings
type OpsConfig struct {
	Port    string
	Enabled bool
}

// Preset is the YAML file shape; absent fields leave the environment value in place and an
// explicit zero overrides it
type Preset struct {
	MCMC PresetMCMC `yaml:"mcmc"`
	Data PresetData `yaml:"data"`
}

// PresetMCMC overrides sampler settings
type PresetMCMC struct {
	Iterations *int     `yaml:"iterations"`
	BurnIn     *int     `yaml:"burn_in"`
	StepSize   *float64 `yaml:"step_size"`
	Seed       *int64   `yaml:"seed"`
	HistoryCap *int     `yaml:"history_cap"`
}

// PresetData overrides synthetic data settings
type PresetData struct {
	PointCount *int     `yaml:"point_count"`
	TMax       *float64 `yaml:"t_max"`
}

// SessionOptions returns the options new sessions start from
func (c *Config) SessionOptions() app.SessionOptions {
	return app.SessionOptions{
		Config:     c.MCMC,
		PointCount: c.Data.PointCount,
		TMax:       c.Data.TMax,
	}
}

// Load reads configuration from environment variables, applies PRESET_FILE when set, and validates it
func Load() (*Config, error) {
	config := loadFromEnv()

	if path := PresetFile(); path != "" {
		if err := applyPresetFile(config, path); err != nil {
			return nil, errors.Wrap(err, "failed to load preset file")
		}
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// PresetFile returns PRESET_FILE, empty when unset
func PresetFile() string {
	return os.Getenv("PRESET_FILE")
}

func loadFromEnv() *Config {
	return &Config{
		MCMC:   loadMCMCConfig(),
		Data:   loadDataConfig(),
		Runner: loadRunnerConfig(),
		Server: loadServerConfig(),
		Ops:    loadOpsConfig(),
	}
}

func loadMCMCConfig() mcmc.Config {
	return mcmc.Config{
		Iterations: getEnvIntOrDefault("MCMC_ITERATIONS", mcmc.DefaultIterations),
		BurnIn:     getEnvIntOrDefault("MCMC_BURN_IN", mcmc.DefaultBurnIn),
		StepSize:   getEnvFloatOrDefault("MCMC_STEP_SIZE", mcmc.DefaultStepSize),
		Seed:       int64(getEnvIntOrDefault("MCMC_SEED", mcmc.DefaultSeed)),
		HistoryCap: getEnvIntOrDefault("MCMC_HISTORY_CAP", mcmc.DefaultHistoryCap),
	}
}

func loadDataConfig() DataConfig {
	return DataConfig{
		PointCount: getEnvIntOrDefault("DATA_POINTS", synthetic.DefaultPointCount),
		TMax:       getEnvFloatOrDefault("DATA_T_MAX", synthetic.DefaultTMax),
	}
}

func loadRunnerConfig() RunnerConfig {
	return RunnerConfig{
		StepInterval: getEnvDurationOrDefault("STEP_INTERVAL", 30*time.Millisecond),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadOpsConfig() OpsConfig {
	return OpsConfig{
		Port:    getEnvOrDefault("OPS_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("OPS_ENABLED", true),
	}
}

func applyPresetFile(config *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}
	return ApplyPreset(config, raw)
}

// ApplyPreset overlays the fields present in a YAML preset
func ApplyPreset(config *Config, raw []byte) error {
	var preset Preset
	if err := yaml.Unmarshal(raw, &preset); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}

	overlay(&config.MCMC.Iterations, preset.MCMC.Iterations)
	overlay(&config.MCMC.BurnIn, preset.MCMC.BurnIn)
	overlay(&config.MCMC.StepSize, preset.MCMC.StepSize)
	overlay(&config.MCMC.Seed, preset.MCMC.Seed)
	overlay(&config.MCMC.HistoryCap, preset.MCMC.HistoryCap)
	overlay(&config.Data.PointCount, preset.Data.PointCount)
	overlay(&config.Data.TMax, preset.Data.TMax)
	return nil
}

func overlay[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func validateConfig(config *Config) error {
	if err := config.MCMC.Validate(); err != nil {
		return errors.InvalidConfiguration(err)
	}
	if config.Data.PointCount < 0 {
		return errors.ConfigInvalid("DATA_POINTS must not be negative")
	}
	if config.Data.TMax <= 0 {
		return errors.ConfigInvalid("DATA_T_MAX must be positive")
	}
	if config.Runner.StepInterval <= 0 {
		return errors.ConfigInvalid("STEP_INTERVAL must be positive")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
