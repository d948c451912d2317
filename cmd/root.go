package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/churnscope/internal/charts"
	cfgpkg "github.com/KaramelBytes/churnscope/internal/config"
	"github.com/KaramelBytes/churnscope/internal/dataset"
	"github.com/KaramelBytes/churnscope/internal/logging"
	"github.com/KaramelBytes/churnscope/internal/pipeline"
	"github.com/KaramelBytes/churnscope/internal/samples"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "churnscope",
	Short: "churnscope: profile a tabular dataset and render its diagnostic charts",
	Long: `churnscope loads a CSV/TSV/XLSX dataset, computes descriptive statistics and renders
a correlation matrix, a missing-value map, categorical counts, numeric boxplots and
target-segmented histograms. Results are printed, written to disk, or served over HTTP.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.churnscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// loadedConfig returns the loaded configuration, loading it on first use when
// the command tree was executed without OnInitialize (tests).
func loadedConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

func newLogger(c *cfgpkg.Global) (*zap.Logger, error) {
	level := c.LogLevel
	if debug {
		level = "debug"
	}
	return logging.New(level, c.LogFile)
}

func styleFrom(c *cfgpkg.Global) charts.Style {
	return charts.Style{
		WidthIn:       c.FigureWidthIn,
		PanelHeightIn: c.PanelHeightIn,
		DPI:           c.DPI,
		TitleSize:     c.FontTitle,
		LabelSize:     c.FontLabel,
		TickSize:      c.FontTick,
		MaxCategories: c.MaxCategories,
		HistBins:      c.HistBins,
	}
}

// pipelineOptions maps the configuration onto analysis options.
func pipelineOptions(c *cfgpkg.Global, log *zap.Logger) pipeline.Options {
	opt := pipeline.DefaultOptions()
	if c.TargetPattern != "" {
		opt.TargetPattern = c.TargetPattern
	}
	if c.PreviewRows > 0 {
		opt.PreviewRows = c.PreviewRows
	}
	if c.Parallelism > 0 {
		opt.Parallelism = c.Parallelism
	}
	load := dataset.DefaultOptions()
	load.MaxRows = c.MaxRows
	opt.Load = load
	opt.Style = styleFrom(c)
	opt.Logger = log
	return opt
}

func catalog(c *cfgpkg.Global) samples.Catalog {
	return samples.Catalog{Dir: c.SamplesDir}
}
