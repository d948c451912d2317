package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Analysis
	TargetPattern string `mapstructure:"target_pattern" yaml:"target_pattern"`
	PreviewRows   int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	MaxRows       int    `mapstructure:"max_rows" yaml:"max_rows"`
	MaxCategories int    `mapstructure:"max_categories" yaml:"max_categories"`
	HistBins      int    `mapstructure:"hist_bins" yaml:"hist_bins"`
	Parallelism   int    `mapstructure:"parallelism" yaml:"parallelism"`

	// Figures
	FigureWidthIn float64 `mapstructure:"figure_width_in" yaml:"figure_width_in"`
	PanelHeightIn float64 `mapstructure:"panel_height_in" yaml:"panel_height_in"`
	DPI           int     `mapstructure:"dpi" yaml:"dpi"`
	FontTitle     float64 `mapstructure:"font_title" yaml:"font_title"`
	FontLabel     float64 `mapstructure:"font_label" yaml:"font_label"`
	FontTick      float64 `mapstructure:"font_tick" yaml:"font_tick"`

	// HTTP server
	ListenAddr    string `mapstructure:"listen_addr" yaml:"listen_addr"`
	UploadLimitMB int    `mapstructure:"upload_limit_mb" yaml:"upload_limit_mb"`
	SamplesDir    string `mapstructure:"samples_dir" yaml:"samples_dir"`

	// Logging
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
}

// Dir returns ~/.churnscope.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".churnscope"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.churnscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CHURNSCOPE")
	v.AutomaticEnv()

	v.SetDefault("target_pattern", "churn")
	v.SetDefault("preview_rows", 5)
	v.SetDefault("max_rows", 0)
	v.SetDefault("max_categories", 20)
	v.SetDefault("hist_bins", 0)
	v.SetDefault("parallelism", 4)
	v.SetDefault("figure_width_in", 15.0)
	v.SetDefault("panel_height_in", 5.0)
	v.SetDefault("dpi", 72)
	v.SetDefault("font_title", 18.0)
	v.SetDefault("font_label", 14.0)
	v.SetDefault("font_tick", 12.0)
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("upload_limit_mb", 50)
	v.SetDefault("samples_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing file is fine; a malformed one is not
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.SamplesDir == "" {
		if dir, err := Dir(); err == nil {
			c.SamplesDir = filepath.Join(dir, "samples")
		}
	}
	return &c, nil
}
