package dataset

import "strings"

// Kind is the column type tag decided once at load time.
type Kind int

const (
	KindNumeric Kind = iota
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column holds one named column. Exactly one of Nums or Strs is populated,
// depending on Kind; Nulls marks missing cells in both cases.
type Column struct {
	Name  string
	Kind  Kind
	Nulls []bool
	Nums  []float64 // numeric values, NaN where null
	Strs  []string  // categorical values, "" where null
}

// Len returns the number of cells in the column.
func (c *Column) Len() int { return len(c.Nulls) }

// IsNull reports whether row i is missing.
func (c *Column) IsNull(i int) bool { return c.Nulls[i] }

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, null := range c.Nulls {
		if null {
			n++
		}
	}
	return n
}

// Floats returns the non-null numeric values in row order.
func (c *Column) Floats() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Nums))
	for i, v := range c.Nums {
		if !c.Nulls[i] {
			out = append(out, v)
		}
	}
	return out
}

// Cell returns the display text of row i ("" when null).
func (c *Column) Cell(i int) string {
	if c.Nulls[i] {
		return ""
	}
	if c.Kind == KindNumeric {
		return formatFloat(c.Nums[i])
	}
	return c.Strs[i]
}

// Dataset is an ordered set of equally long columns.
type Dataset struct {
	Name    string
	Columns []*Column
	Rows    int
	// Dropped counts rows skipped because of Options.MaxRows.
	Dropped int
}

// Names returns the column names in load order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks a column up by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Index returns the position of name, or -1.
func (d *Dataset) Index(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Head returns up to n rows as display strings.
func (d *Dataset) Head(n int) [][]string {
	if n > d.Rows {
		n = d.Rows
	}
	if n <= 0 {
		return nil
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(d.Columns))
		for j, c := range d.Columns {
			row[j] = c.Cell(i)
		}
		out[i] = row
	}
	return out
}

// Classify partitions column names into numeric and categorical, each in load order.
func Classify(d *Dataset) (numeric, categorical []string) {
	for _, c := range d.Columns {
		switch c.Kind {
		case KindNumeric:
			numeric = append(numeric, c.Name)
		case KindCategorical:
			categorical = append(categorical, c.Name)
		}
	}
	return numeric, categorical
}

var nullTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
	"#n/a": {},
}

func isNullToken(s string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}
