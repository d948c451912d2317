package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/churnscope/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// OutlierThreshold is the robust |z| cut-off used for outlier counts.
const OutlierThreshold = 3.5

// ColumnProfile captures descriptive statistics for one column.
// Numeric statistics are rounded to 2 decimals and NaN when undefined.
type ColumnProfile struct {
	Name    string
	Kind    dataset.Kind
	Count   int // non-null cells
	Missing int
	// Numeric stats
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	// Outliers via robust Z-score (MAD)
	Outliers int
	// Categorical stats
	Unique int
	Top    string
	Freq   int
}

// Summary is the profile of a whole dataset.
type Summary struct {
	Name        string
	Rows        int
	Columns     int
	Numeric     int
	Categorical int
	Dropped     int
	Header      []string
	Profiles    []ColumnProfile
	Preview     [][]string
	Warnings    []string
}

// ProfileError indicates an inconsistent dataset; it is a defect, not a user error.
type ProfileError struct {
	Column string
	Err    error
}

func (e *ProfileError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("profile column %q: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("profile: %v", e.Err)
}

func (e *ProfileError) Unwrap() error { return e.Err }

// Profile computes one ColumnProfile per column, in column order, plus dataset counts.
// previewRows bounds the number of head rows kept for display.
func Profile(ds *dataset.Dataset, previewRows int) (*Summary, error) {
	if ds == nil {
		return nil, &ProfileError{Err: fmt.Errorf("nil dataset")}
	}
	s := &Summary{
		Name:    ds.Name,
		Rows:    ds.Rows,
		Columns: len(ds.Columns),
		Dropped: ds.Dropped,
		Header:  ds.Names(),
		Preview: ds.Head(previewRows),
	}
	s.Profiles = make([]ColumnProfile, 0, len(ds.Columns))
	for _, c := range ds.Columns {
		if c.Len() != ds.Rows {
			return nil, &ProfileError{Column: c.Name, Err: fmt.Errorf("has %d cells, dataset has %d rows", c.Len(), ds.Rows)}
		}
		p := ColumnProfile{Name: c.Name, Kind: c.Kind}
		p.Missing = c.NullCount()
		p.Count = c.Len() - p.Missing
		switch c.Kind {
		case dataset.KindNumeric:
			s.Numeric++
			numericStats(&p, c.Floats())
		case dataset.KindCategorical:
			s.Categorical++
			categoricalStats(&p, c)
		default:
			return nil, &ProfileError{Column: c.Name, Err: fmt.Errorf("unknown kind %d", c.Kind)}
		}
		s.Profiles = append(s.Profiles, p)
	}
	if s.Rows == 0 {
		s.Warnings = append(s.Warnings, "dataset has no rows; statistics are undefined")
	}
	if s.Dropped > 0 {
		s.Warnings = append(s.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", s.Rows, s.Rows+s.Dropped))
	}
	return s, nil
}

func numericStats(p *ColumnProfile, vals []float64) {
	nan := math.NaN()
	p.Mean, p.Std, p.Min, p.Q1, p.Median, p.Q3, p.Max = nan, nan, nan, nan, nan, nan, nan
	if len(vals) == 0 {
		return
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(vals, nil)
	p.Mean = round2(mean)
	if len(vals) > 1 {
		p.Std = round2(std)
	}
	p.Min = round2(sorted[0])
	p.Q1 = round2(quantile(sorted, 0.25))
	p.Median = round2(quantile(sorted, 0.5))
	p.Q3 = round2(quantile(sorted, 0.75))
	p.Max = round2(sorted[len(sorted)-1])

	if len(vals) >= 8 {
		median, mad := medianMAD(sorted)
		if mad > 0 {
			for _, v := range vals {
				if math.Abs(0.6745*(v-median)/mad) > OutlierThreshold {
					p.Outliers++
				}
			}
		}
	}
}

func categoricalStats(p *ColumnProfile, c *dataset.Column) {
	nan := math.NaN()
	p.Mean, p.Std, p.Min, p.Q1, p.Median, p.Q3, p.Max = nan, nan, nan, nan, nan, nan, nan
	counts := map[string]int{}
	for i, v := range c.Strs {
		if c.Nulls[i] {
			continue
		}
		counts[v]++
	}
	p.Unique = len(counts)
	tops := TopValues(counts, 1)
	if len(tops) > 0 {
		p.Top = tops[0].Value
		p.Freq = tops[0].Count
	}
}

// CategoryCount pairs a category with its frequency.
type CategoryCount struct {
	Value string
	Count int
}

// TopValues orders categories by count descending, then value ascending, and keeps at most n (n <= 0 keeps all).
func TopValues(counts map[string]int, n int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if n > 0 && len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*100) / 100
}

// medianMAD computes median and MAD (median absolute deviation) of sorted values.
func medianMAD(sorted []float64) (median, mad float64) {
	if len(sorted) == 0 {
		return 0, 0
	}
	median = quantile(sorted, 0.5)
	dev := make([]float64, len(sorted))
	for i, v := range sorted {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
