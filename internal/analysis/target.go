package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/churnscope/internal/dataset"
)

// DefaultTargetPattern is the substring used to spot a label column.
const DefaultTargetPattern = "churn"

var (
	// ErrTargetNotFound means no column matched the target heuristic.
	ErrTargetNotFound = errors.New("no target column found")
	// ErrMultiClassTarget means the target has more than two classes; segmented coloring needs a binary target.
	ErrMultiClassTarget = errors.New("target column has more than two classes")
)

// Target references the label column and its distinct classes.
type Target struct {
	Name    string
	Index   int
	Classes []string
}

// Binary reports whether the target has at most two classes.
func (t *Target) Binary() bool { return t != nil && len(t.Classes) <= 2 }

// ClassIndex maps a display value to its position in Classes, or -1.
func (t *Target) ClassIndex(v string) int {
	for i, c := range t.Classes {
		if c == v {
			return i
		}
	}
	return -1
}

// CheckBinary returns ErrMultiClassTarget (wrapped with the class count) when the target is not binary.
func (t *Target) CheckBinary() error {
	if t.Binary() {
		return nil
	}
	return fmt.Errorf("%w: %q has %d classes", ErrMultiClassTarget, t.Name, len(t.Classes))
}

// ResolveTarget returns the first column, in column order, whose name contains pattern
// (case-insensitive). An empty pattern falls back to DefaultTargetPattern.
func ResolveTarget(ds *dataset.Dataset, pattern string) (*Target, error) {
	p := strings.ToLower(strings.TrimSpace(pattern))
	if p == "" {
		p = DefaultTargetPattern
	}
	for i, c := range ds.Columns {
		if strings.Contains(strings.ToLower(c.Name), p) {
			return newTarget(c, i), nil
		}
	}
	return nil, ErrTargetNotFound
}

// TargetByName resolves an explicitly named target column (case-insensitive exact match).
func TargetByName(ds *dataset.Dataset, name string) (*Target, error) {
	for i, c := range ds.Columns {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return newTarget(c, i), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, name)
}

func newTarget(c *dataset.Column, idx int) *Target {
	seen := map[string]struct{}{}
	var classes []string
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.Cell(i)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		classes = append(classes, v)
	}
	if c.Kind == dataset.KindNumeric {
		sort.Slice(classes, func(i, j int) bool {
			a, _ := strconv.ParseFloat(classes[i], 64)
			b, _ := strconv.ParseFloat(classes[j], 64)
			return a < b
		})
	} else {
		sort.Strings(classes)
	}
	return &Target{Name: c.Name, Index: idx, Classes: classes}
}
