package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/churnscope/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set churnscope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedConfig()
		if err != nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("target_pattern: %s\n", c.TargetPattern)
		fmt.Printf("preview_rows: %d\n", c.PreviewRows)
		fmt.Printf("max_rows: %d\n", c.MaxRows)
		fmt.Printf("max_categories: %d\n", c.MaxCategories)
		if c.HistBins > 0 {
			fmt.Printf("hist_bins: %d\n", c.HistBins)
		} else {
			fmt.Println("hist_bins: auto")
		}
		fmt.Printf("parallelism: %d\n", c.Parallelism)
		fmt.Printf("figure_width_in: %.2f\n", c.FigureWidthIn)
		fmt.Printf("panel_height_in: %.2f\n", c.PanelHeightIn)
		fmt.Printf("dpi: %d\n", c.DPI)
		fmt.Printf("font_title: %.1f\n", c.FontTitle)
		fmt.Printf("font_label: %.1f\n", c.FontLabel)
		fmt.Printf("font_tick: %.1f\n", c.FontTick)
		fmt.Printf("listen_addr: %s\n", c.ListenAddr)
		fmt.Printf("upload_limit_mb: %d\n", c.UploadLimitMB)
		fmt.Printf("samples_dir: %s\n", c.SamplesDir)
		fmt.Printf("log_level: %s\n", c.LogLevel)
		if c.LogFile != "" {
			fmt.Printf("log_file: %s\n", c.LogFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		switch key {
		case "target_pattern":
			if strings.TrimSpace(val) == "" {
				return fmt.Errorf("target_pattern must not be empty")
			}
			c.TargetPattern = val
		case "preview_rows":
			return setInt(c, key, val, 0, &c.PreviewRows)
		case "max_rows":
			return setInt(c, key, val, 0, &c.MaxRows)
		case "max_categories":
			return setInt(c, key, val, 1, &c.MaxCategories)
		case "hist_bins":
			return setInt(c, key, val, 0, &c.HistBins)
		case "parallelism":
			return setInt(c, key, val, 1, &c.Parallelism)
		case "dpi":
			return setInt(c, key, val, 1, &c.DPI)
		case "upload_limit_mb":
			return setInt(c, key, val, 1, &c.UploadLimitMB)
		case "figure_width_in":
			return setFloat(c, key, val, &c.FigureWidthIn)
		case "panel_height_in":
			return setFloat(c, key, val, &c.PanelHeightIn)
		case "font_title":
			return setFloat(c, key, val, &c.FontTitle)
		case "font_label":
			return setFloat(c, key, val, &c.FontLabel)
		case "font_tick":
			return setFloat(c, key, val, &c.FontTick)
		case "listen_addr":
			c.ListenAddr = val
		case "samples_dir":
			c.SamplesDir = val
		case "log_level":
			var lvl zapcore.Level
			if err := lvl.UnmarshalText([]byte(val)); err != nil {
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
			c.LogLevel = lvl.String()
		case "log_file":
			c.LogFile = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		return saveConfig(c)
	},
}

func setInt(c *cfgpkg.Global, key, val string, min int, dst *int) error {
	i, err := strconv.Atoi(val)
	if err != nil || i < min {
		return fmt.Errorf("invalid int for %s: %v (minimum %d)", key, val, min)
	}
	*dst = i
	return saveConfig(c)
}

func setFloat(c *cfgpkg.Global, key, val string, dst *float64) error {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("invalid float for %s: %v", key, val)
	}
	*dst = f
	return saveConfig(c)
}

func saveConfig(c *cfgpkg.Global) error {
	if err := cfgpkg.Save(c, cfgFile); err != nil {
		return err
	}
	fmt.Println("Saved config")
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
