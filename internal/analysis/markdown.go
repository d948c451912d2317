package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/churnscope/internal/dataset"
)

// DescribeLabels are the row labels of the describe table, in display order.
var DescribeLabels = []string{"count", "unique", "top", "freq", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Describe returns one row per DescribeLabels entry and one cell per column profile.
// Undefined cells are rendered as "NaN" for numeric stats and "" for categorical-only rows.
func (s *Summary) Describe() [][]string {
	out := make([][]string, len(DescribeLabels))
	for i := range out {
		out[i] = make([]string, len(s.Profiles))
	}
	for j, p := range s.Profiles {
		out[0][j] = fmt.Sprintf("%d", p.Count)
		if p.Kind == dataset.KindCategorical {
			out[1][j] = fmt.Sprintf("%d", p.Unique)
			out[2][j] = p.Top
			if p.Unique > 0 {
				out[3][j] = fmt.Sprintf("%d", p.Freq)
			}
		}
		for k, v := range []float64{p.Mean, p.Std, p.Min, p.Q1, p.Median, p.Q3, p.Max} {
			if p.Kind == dataset.KindCategorical {
				continue
			}
			out[4+k][j] = fmtStat(v)
		}
	}
	return out
}

// Left returns the dataset-level label/value pairs shown next to the statistics.
func (s *Summary) Left() [][2]string {
	return [][2]string{
		{"Records", fmt.Sprintf("%d", s.Rows)},
		{"Attributes", fmt.Sprintf("%d", s.Columns)},
		{"Categorical", fmt.Sprintf("%d", s.Categorical)},
		{"Numerical", fmt.Sprintf("%d", s.Numeric)},
	}
}

func fmtStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

// Markdown renders a compact text report for terminal output.
// corr and target may be nil.
func (s *Summary) Markdown(corr *CorrMatrix, target *Target) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	if s.Dropped > 0 {
		b.WriteString(fmt.Sprintf("Rows: ~%d (processed %d)\n", s.Rows+s.Dropped, s.Rows))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", s.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d (numeric %d, categorical %d)\n", s.Columns, s.Numeric, s.Categorical))
	if target != nil {
		b.WriteString(fmt.Sprintf("Target: %s (%s)\n", target.Name, strings.Join(target.Classes, ", ")))
	} else {
		b.WriteString("Target: none\n")
	}
	b.WriteString("\n[SCHEMA]\n")
	for _, p := range s.Profiles {
		total := p.Count + p.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(p.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(p.Name), p.Kind, p.Count, missPct))
		switch p.Kind {
		case dataset.KindNumeric:
			if p.Count > 0 {
				b.WriteString(fmt.Sprintf(", min %.4g, max %.4g, mean %.4g, std %.4g", p.Min, p.Max, p.Mean, p.Std))
			}
			if p.Outliers > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", p.Outliers, OutlierThreshold))
			}
		case dataset.KindCategorical:
			if p.Unique > 0 {
				b.WriteString(fmt.Sprintf(", top: %s(%d); unique=%d", safeVal(p.Top), p.Freq, p.Unique))
			}
		}
		b.WriteString("\n")
	}
	if corr != nil && len(corr.Columns) >= 2 {
		if pairs := corr.TopPairs(10); len(pairs) > 0 {
			b.WriteString("\n[CORRELATIONS]\n")
			for _, p := range pairs {
				b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
			}
		}
	}
	if len(s.Preview) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, h := range s.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(h))
		}
		b.WriteString(" |\n| ")
		for i := range s.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range s.Preview {
			b.WriteString("| ")
			for i, v := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				b.WriteString(safeVal(v))
			}
			b.WriteString(" |\n")
		}
	}
	if len(s.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range s.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
