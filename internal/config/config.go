package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Default values for commands
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// DefaultsConfig holds default values for the stream command
type DefaultsConfig struct {
	Target          string  `mapstructure:"target"`
	FPS             int     `mapstructure:"fps"`
	Quality         int     `mapstructure:"quality"`
	MaxWidth        int     `mapstructure:"max_width"`
	GridSize        int     `mapstructure:"grid_size"`
	ChangeThreshold float64 `mapstructure:"change_threshold"`
	SampleTolerance int     `mapstructure:"sample_tolerance"`
	KeyframeEvery   string  `mapstructure:"keyframe_every"`
	OutputDir       string  `mapstructure:"output_dir"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "auto",
		Quiet:   false,
		Verbose: false,
		Defaults: DefaultsConfig{
			Target:          "display:0",
			FPS:             2,
			Quality:         65,
			MaxWidth:        1024,
			GridSize:        16,
			ChangeThreshold: 0.08,
			SampleTolerance: 16,
			KeyframeEvery:   "10s",
		},
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("scw")
	v.SetConfigType("yaml")

	// Add config paths (in order of precedence, lowest first)
	// 1. System-wide config
	v.AddConfigPath("/etc/scw/")
	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "scw"))
	}
	// 3. Home directory (as .scw.yaml)
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".scw")
	}
	// 4. Current directory
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("SCW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Bind specific environment variables
	v.BindEnv("format", "SCW_FORMAT")
	v.BindEnv("quiet", "SCW_QUIET")
	v.BindEnv("verbose", "SCW_VERBOSE")
	v.BindEnv("defaults.target", "SCW_TARGET")
	v.BindEnv("defaults.fps", "SCW_FPS")
	v.BindEnv("defaults.output_dir", "SCW_OUTPUT_DIR")

	// Set defaults
	cfg := Default()
	v.SetDefault("format", cfg.Format)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("defaults.target", cfg.Defaults.Target)
	v.SetDefault("defaults.fps", cfg.Defaults.FPS)
	v.SetDefault("defaults.quality", cfg.Defaults.Quality)
	v.SetDefault("defaults.max_width", cfg.Defaults.MaxWidth)
	v.SetDefault("defaults.grid_size", cfg.Defaults.GridSize)
	v.SetDefault("defaults.change_threshold", cfg.Defaults.ChangeThreshold)
	v.SetDefault("defaults.sample_tolerance", cfg.Defaults.SampleTolerance)
	v.SetDefault("defaults.keyframe_every", cfg.Defaults.KeyframeEvery)

	// Try to read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error occurred
			return nil, err
		}
		// Config file not found; use defaults
	}

	// Unmarshal into struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
