package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/churnscope/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// Encoded is a purely numeric view of a dataset, one slice per column in column order.
// Nulls are NaN.
type Encoded struct {
	Columns []string
	Values  [][]float64
	// Codes holds the ordinal code table for each categorical column.
	Codes map[string]map[string]float64
}

// Encode passes numeric columns through and maps each categorical value to its rank
// in the sorted set of distinct values, so the same value set always yields the same codes.
func Encode(ds *dataset.Dataset) *Encoded {
	enc := &Encoded{
		Columns: ds.Names(),
		Values:  make([][]float64, len(ds.Columns)),
		Codes:   map[string]map[string]float64{},
	}
	for j, c := range ds.Columns {
		out := make([]float64, c.Len())
		switch c.Kind {
		case dataset.KindNumeric:
			copy(out, c.Nums)
		default:
			codes := ordinalCodes(c)
			enc.Codes[c.Name] = codes
			for i, v := range c.Strs {
				if c.Nulls[i] {
					out[i] = math.NaN()
					continue
				}
				out[i] = codes[v]
			}
		}
		enc.Values[j] = out
	}
	return enc
}

func ordinalCodes(c *dataset.Column) map[string]float64 {
	seen := map[string]struct{}{}
	var distinct []string
	for i, v := range c.Strs {
		if c.Nulls[i] {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			distinct = append(distinct, v)
		}
	}
	sort.Strings(distinct)
	codes := make(map[string]float64, len(distinct))
	for i, v := range distinct {
		codes[v] = float64(i)
	}
	return codes
}

// CorrMatrix holds a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Correlate computes pairwise-complete Pearson correlations between every pair of encoded
// columns. The diagonal is 1; cells involving a column without variance are NaN.
func Correlate(enc *Encoded) *CorrMatrix {
	n := len(enc.Columns)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		if hasVariance(enc.Values[a]) {
			mat[a][a] = 1
		} else {
			mat[a][a] = math.NaN()
		}
		for b := 0; b < a; b++ {
			r := pearson(enc.Values[a], enc.Values[b])
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return &CorrMatrix{Columns: append([]string(nil), enc.Columns...), Values: mat}
}

func pearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 || !hasVariance(xs) || !hasVariance(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

func hasVariance(vals []float64) bool {
	first := math.NaN()
	seen := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		seen++
		if seen == 1 {
			first = v
			continue
		}
		if v != first {
			return true
		}
	}
	return false
}

// TopPairs lists the n strongest off-diagonal pairs by |r|, skipping undefined ones.
func (m *CorrMatrix) TopPairs(n int) []PairCorr {
	var pairs []PairCorr
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			r := m.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}
