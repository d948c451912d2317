package pipeline

import (
	"github.com/KaramelBytes/churnscope/internal/analysis"
	"github.com/KaramelBytes/churnscope/internal/artifact"
	"github.com/KaramelBytes/churnscope/internal/charts"
)

// ErrorKind classifies a collected error.
type ErrorKind string

const (
	KindLoad           ErrorKind = "load"
	KindProfile        ErrorKind = "profile"
	KindTargetNotFound ErrorKind = "target_not_found"
	KindTargetClasses  ErrorKind = "target_classes"
	KindEncode         ErrorKind = "encode"
	KindEmpty          ErrorKind = "empty"
	KindCanceled       ErrorKind = "canceled"
	KindRender         ErrorKind = "render"

	// KindRange marks panels whose values span more than a float64 can hold.
	KindRange ErrorKind = "range"
)

// Issue is a non-fatal error returned alongside the artifacts that did succeed.
type Issue struct {
	Kind     ErrorKind `json:"kind"`
	Artifact string    `json:"artifact,omitempty"`
	Message  string    `json:"message"`
}

// Pair is one label/value entry of stats_left.
type Pair struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Table is a rectangular string table with optional row labels.
type Table struct {
	Columns []string   `json:"columns"`
	Index   []string   `json:"index,omitempty"`
	Rows    [][]string `json:"rows"`
}

// StatsTables holds the descriptive statistics and the dataset preview.
type StatsTables struct {
	Describe Table `json:"describe"`
	Head     Table `json:"head"`
}

// ArtifactNames lists the chart artifacts in bundle order.
var ArtifactNames = []string{
	charts.NameCorrelation,
	charts.NameMissing,
	charts.NameCategorical,
	charts.NameNumerical,
	charts.NameHistograms,
}

// ResultBundle is everything one analysis produces. Absent artifacts are nil and listed in Missing.
type ResultBundle struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Notice string `json:"notice,omitempty"`

	StatsTables StatsTables `json:"stats_tables"`
	StatsLeft   []Pair      `json:"stats_left"`
	Report      string      `json:"report"`

	CorrelationMatrix *artifact.Artifact `json:"correlation_matrix"`
	MissingValues     *artifact.Artifact `json:"missing_values"`
	CategoricalPlots  *artifact.Artifact `json:"categorical_plots"`
	NumericalPlots    *artifact.Artifact `json:"numerical_plots"`
	Histograms        *artifact.Artifact `json:"histograms"`

	ResolvedTarget *string  `json:"resolved_target"`
	Missing        []string `json:"missing"`
	Errors         []Issue  `json:"errors"`

	Summary     *analysis.Summary    `json:"-"`
	Correlation *analysis.CorrMatrix `json:"-"`
	Target      *analysis.Target     `json:"-"`
}

// Artifact returns the named artifact, or nil when it was not produced.
func (b *ResultBundle) Artifact(name string) *artifact.Artifact {
	switch name {
	case charts.NameCorrelation:
		return b.CorrelationMatrix
	case charts.NameMissing:
		return b.MissingValues
	case charts.NameCategorical:
		return b.CategoricalPlots
	case charts.NameNumerical:
		return b.NumericalPlots
	case charts.NameHistograms:
		return b.Histograms
	}
	return nil
}

// Artifacts returns the produced artifacts in bundle order.
func (b *ResultBundle) Artifacts() []artifact.Artifact {
	var out []artifact.Artifact
	for _, n := range ArtifactNames {
		if a := b.Artifact(n); a != nil {
			out = append(out, *a)
		}
	}
	return out
}

func (b *ResultBundle) set(name string, a *artifact.Artifact) {
	switch name {
	case charts.NameCorrelation:
		b.CorrelationMatrix = a
	case charts.NameMissing:
		b.MissingValues = a
	case charts.NameCategorical:
		b.CategoricalPlots = a
	case charts.NameNumerical:
		b.NumericalPlots = a
	case charts.NameHistograms:
		b.Histograms = a
	}
}

// warn records an issue without omitting the artifact.
func (b *ResultBundle) warn(kind ErrorKind, name, msg string) {
	b.Errors = append(b.Errors, Issue{Kind: kind, Artifact: name, Message: msg})
}

func (b *ResultBundle) fail(kind ErrorKind, name string, err error) {
	b.Errors = append(b.Errors, Issue{Kind: kind, Artifact: name, Message: err.Error()})
	if name == "" {
		return
	}
	for _, m := range b.Missing {
		if m == name {
			return
		}
	}
	b.Missing = append(b.Missing, name)
}

func statsTables(s *analysis.Summary) StatsTables {
	idx := make([]string, len(s.Preview))
	for i := range idx {
		idx[i] = itoa(i)
	}
	return StatsTables{
		Describe: Table{Columns: s.Header, Index: append([]string(nil), analysis.DescribeLabels...), Rows: s.Describe()},
		Head:     Table{Columns: s.Header, Index: idx, Rows: s.Preview},
	}
}

func statsLeft(s *analysis.Summary) []Pair {
	var out []Pair
	for _, kv := range s.Left() {
		out = append(out, Pair{Label: kv[0], Value: kv[1]})
	}
	return out
}
