package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/churnscope/internal/pipeline"
	"github.com/KaramelBytes/churnscope/internal/utils"
	"github.com/spf13/cobra"
)

var (
	abOutDir     string
	abTarget     string
	abPattern    string
	abSampleRows int
	abQuiet      bool
	abLoad       loadFlags
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files with progress, one output folder per dataset",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		seen := map[string]struct{}{}
		for _, arg := range args {
			matches, _ := filepath.Glob(arg)
			if len(matches) == 0 {
				// treat as literal path if exists
				if _, err := os.Stat(arg); err == nil {
					matches = []string{arg}
				}
			}
			for _, m := range matches {
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				files = append(files, m)
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		sort.Strings(files)

		c, err := loadedConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(c)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		opt, err := analyzeOptions(c, log, abLoad, abTarget, abPattern, abSampleRows)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		total := len(files)
		failed := 0
		for i, path := range files {
			if !abQuiet {
				fmt.Printf("[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			b, err := pipeline.Analyze(ctx, pipeline.Source{Path: path}, opt)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				// one unreadable file does not stop the batch
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", filepath.Base(path), err)
				failed++
				continue
			}
			if !abQuiet {
				warnIssues(b)
			}
			if abOutDir == "" {
				if !abQuiet {
					fmt.Println(b.Report)
				}
				continue
			}

			base := filepath.Base(path)
			safe := utils.Slug(strings.TrimSuffix(base, filepath.Ext(base)), "dataset")
			if abLoad.sheetName != "" {
				safe += "__sheet-" + utils.Slug(abLoad.sheetName, "sheet")
			}
			outDir := utils.UniquePath(abOutDir, safe)
			if filepath.Base(outDir) != safe && !abQuiet {
				fmt.Printf("⚠ Detected existing output, writing to %s to avoid overwrite.\n", filepath.Base(outDir))
			}
			if err := writeBundle(outDir, b); err != nil {
				return err
			}
			if !abQuiet {
				fmt.Printf("✓ Wrote %s\n", outDir)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d datasets failed to load", failed, total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abOutDir, "out-dir", "d", "", "parent directory; each dataset gets its own folder")
	analyzeBatchCmd.Flags().StringVarP(&abTarget, "target", "t", "", "target column name (overrides the pattern)")
	analyzeBatchCmd.Flags().StringVar(&abPattern, "target-pattern", "", "substring identifying the target column (default from config)")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", -1, "number of preview rows to include (-1 = config value)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	abLoad.register(analyzeBatchCmd)
}
