package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	cfgpkg "github.com/KaramelBytes/churnscope/internal/config"
	"github.com/KaramelBytes/churnscope/internal/dataset"
	"github.com/KaramelBytes/churnscope/internal/pipeline"
	"github.com/KaramelBytes/churnscope/internal/report"
	"github.com/KaramelBytes/churnscope/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	anaSample     string
	anaTarget     string
	anaPattern    string
	anaOutDir     string
	anaOutputPath string
	anaJSON       bool
	anaSampleRows int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Profile a CSV/TSV/XLSX dataset and render its diagnostic charts",
	Long: `Profile a dataset and render its charts. Without a file, --sample picks a dataset from
the samples directory; with neither, the default sample is loaded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(c)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		opt, err := analyzeOptions(c, log, anaLoad, anaTarget, anaPattern, anaSampleRows)
		if err != nil {
			return err
		}

		var src pipeline.Source
		var notice string
		switch {
		case len(args) == 1:
			src.Path = args[0]
		case anaSample != "":
			p, err := catalog(c).Path(anaSample)
			if err != nil {
				return err
			}
			src.Path = p
		default:
			p, n, err := catalog(c).Default()
			if err != nil {
				return fmt.Errorf("no dataset given and no default sample in %s: %w", c.SamplesDir, err)
			}
			src.Path, notice = p, n
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		b, err := pipeline.Analyze(ctx, src, opt)
		if err != nil {
			return err
		}
		b.Notice = notice
		if notice != "" {
			fmt.Fprintf(os.Stderr, "ℹ %s\n", notice)
		}
		warnIssues(b)

		written := false
		if anaOutDir != "" {
			if err := writeBundle(anaOutDir, b); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %d charts, report.html and bundle.json to %s\n", len(b.Artifacts()), anaOutDir)
			written = true
		}
		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, []byte(b.Report), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
			written = true
		}
		if anaJSON {
			out, err := utils.PrettyJSON(b)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}
		if !written {
			fmt.Println(b.Report)
		}
		return nil
	},
}

// loadFlags are the dataset parsing flags shared by analyze and analyze-batch.
type loadFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to process (0 = config value)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (f loadFlags) apply(opt *dataset.Options) error {
	if f.maxRows > 0 {
		opt.MaxRows = f.maxRows
	}
	if f.delimiter != "" {
		switch f.delimiter {
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
		}
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	if opt.DecimalSeparator != 0 && opt.DecimalSeparator == opt.ThousandsSeparator {
		return fmt.Errorf("--decimal and --thousands must differ")
	}
	opt.SheetName = f.sheetName
	if f.sheetIndex > 0 {
		opt.SheetIndex = f.sheetIndex
	}
	return nil
}

var anaLoad loadFlags

// analyzeOptions layers the analyze flags over the configuration.
func analyzeOptions(c *cfgpkg.Global, log *zap.Logger, lf loadFlags, target, pattern string, previewRows int) (pipeline.Options, error) {
	opt := pipelineOptions(c, log)
	if err := lf.apply(&opt.Load); err != nil {
		return opt, err
	}
	if target != "" {
		opt.TargetColumn = target
	}
	if pattern != "" {
		opt.TargetPattern = pattern
	}
	if previewRows >= 0 {
		opt.PreviewRows = previewRows
	}
	return opt, nil
}

// writeBundle writes one PNG per artifact, report.html and bundle.json into dir.
func writeBundle(dir string, b *pipeline.ResultBundle) error {
	if err := utils.EnsureDir(dir); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, a := range b.Artifacts() {
		png, err := a.Decode()
		if err != nil {
			return fmt.Errorf("decode %s: %w", a.Name, err)
		}
		if err := utils.SafeWriteFile(filepath.Join(dir, a.Name+".png"), png); err != nil {
			return err
		}
	}
	var html bytes.Buffer
	if err := report.Render(&html, report.Page(b)); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := utils.SafeWriteFile(filepath.Join(dir, "report.html"), html.Bytes()); err != nil {
		return err
	}
	js, err := utils.PrettyJSON(b)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(dir, "bundle.json"), js)
}

// warnIssues reports the non-fatal problems of an analysis on stderr.
func warnIssues(b *pipeline.ResultBundle) {
	for _, is := range b.Errors {
		if is.Artifact != "" {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s omitted (%s): %s\n", is.Artifact, is.Kind, is.Message)
			continue
		}
		fmt.Fprintf(os.Stderr, "⚠ Warning: %s: %s\n", is.Kind, is.Message)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaSample, "sample", "s", "", "analyze a named dataset from the samples directory")
	analyzeCmd.Flags().StringVarP(&anaTarget, "target", "t", "", "target column name (overrides the pattern)")
	analyzeCmd.Flags().StringVar(&anaPattern, "target-pattern", "", "substring identifying the target column (default from config)")
	analyzeCmd.Flags().StringVarP(&anaOutDir, "out-dir", "d", "", "directory for chart PNGs, report.html and bundle.json")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the text summary (Markdown)")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print the result bundle as JSON")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", -1, "number of preview rows to include (-1 = config value)")
	anaLoad.register(analyzeCmd)
}
