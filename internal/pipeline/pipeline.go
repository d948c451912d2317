// Package pipeline runs one analysis request end to end and assembles the ResultBundle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/KaramelBytes/churnscope/internal/analysis"
	"github.com/KaramelBytes/churnscope/internal/artifact"
	"github.com/KaramelBytes/churnscope/internal/charts"
	"github.com/KaramelBytes/churnscope/internal/dataset"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source is either a file path or uploaded content.
type Source struct {
	Path string
	Name string
	Data []byte
}

func (s Source) label() string {
	if s.Path != "" {
		return s.Path
	}
	return s.Name
}

// Options configures one analysis.
type Options struct {
	// TargetColumn names the target exactly; when empty TargetPattern is matched.
	TargetColumn  string
	TargetPattern string
	PreviewRows   int
	// Parallelism bounds concurrent renderers; 1 renders sequentially.
	Parallelism int
	Load        dataset.Options
	Style       charts.Style
	Logger      *zap.Logger
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		TargetPattern: analysis.DefaultTargetPattern,
		PreviewRows:   5,
		Parallelism:   4,
		Load:          dataset.DefaultOptions(),
		Style:         charts.DefaultStyle(),
	}
}

// Load reads the source into a dataset.
func Load(src Source, opt dataset.Options) (*dataset.Dataset, error) {
	switch {
	case src.Path != "":
		return dataset.LoadFile(src.Path, opt)
	case src.Data != nil:
		name := src.Name
		if name == "" {
			name = "upload.csv"
		}
		return dataset.LoadBytes(name, src.Data, opt)
	default:
		return nil, &dataset.LoadError{Source: src.Name, Err: errors.New("no dataset supplied")}
	}
}

type job struct {
	name   string
	render func() (*charts.Figure, error)
}

type outcome struct {
	art  *artifact.Artifact
	err  error
	took time.Duration
}

// Analyze loads the source, profiles it and renders every chart.
// Load and profile failures are fatal and return a nil bundle. Renderer failures are
// recorded in the bundle. If ctx is canceled mid-way, the partial bundle is returned
// together with the context error.
func Analyze(ctx context.Context, src Source, opt Options) (*ResultBundle, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	ds, err := Load(src, opt.Load)
	if err != nil {
		return nil, err
	}
	sum, err := analysis.Profile(ds, opt.PreviewRows)
	if err != nil {
		return nil, err
	}

	b := &ResultBundle{
		ID:          uuid.NewString(),
		Source:      ds.Name,
		Summary:     sum,
		StatsTables: statsTables(sum),
		StatsLeft:   statsLeft(sum),
		Missing:     []string{},
		Errors:      []Issue{},
	}
	log = log.With(zap.String("analysis_id", b.ID), zap.String("source", src.label()))

	var tgt *analysis.Target
	if opt.TargetColumn != "" {
		tgt, err = analysis.TargetByName(ds, opt.TargetColumn)
	} else {
		tgt, err = analysis.ResolveTarget(ds, opt.TargetPattern)
	}
	if err != nil {
		tgt = nil
		b.fail(KindTargetNotFound, charts.NameHistograms, err)
	} else {
		b.Target = tgt
		name := tgt.Name
		b.ResolvedTarget = &name
	}

	b.Correlation = analysis.Correlate(analysis.Encode(ds))
	b.Report = sum.Markdown(b.Correlation, tgt)
	num, cat := dataset.Classify(ds)
	st := opt.Style
	jobs := []job{
		{charts.NameCorrelation, func() (*charts.Figure, error) { return charts.Correlation(b.Correlation, st) }},
		{charts.NameMissing, func() (*charts.Figure, error) { return charts.Missingness(ds, st) }},
		{charts.NameCategorical, func() (*charts.Figure, error) { return charts.CategoricalCounts(ds, cat, st) }},
		{charts.NameNumerical, func() (*charts.Figure, error) { return charts.NumericBoxplots(ds, num, st) }},
	}
	if tgt != nil {
		jobs = append(jobs, job{charts.NameHistograms, func() (*charts.Figure, error) { return charts.TargetHistograms(ds, tgt, st) }})
	}

	results := make([]outcome, len(jobs))
	par := opt.Parallelism
	if par <= 0 {
		par = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(par)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].err = err
				return nil
			}
			t0 := time.Now()
			a, err := render(j)
			results[i] = outcome{art: a, err: err, took: time.Since(t0)}
			return nil
		})
	}
	_ = g.Wait()

	for i, j := range jobs {
		r := results[i]
		if r.err != nil {
			kind := Classify(r.err)
			log.Warn("artifact omitted", zap.String("artifact", j.name), zap.String("kind", string(kind)), zap.Error(r.err))
			b.fail(kind, j.name, r.err)
			continue
		}
		log.Debug("artifact rendered", zap.String("artifact", j.name), zap.Duration("took", r.took), zap.Int("bytes", len(r.art.Data)))
		b.set(j.name, r.art)
		for _, panel := range r.art.Panels {
			if reason, ok := r.art.Skipped[panel]; ok {
				log.Warn("panel skipped", zap.String("artifact", j.name), zap.String("panel", panel), zap.String("reason", reason))
				b.warn(KindRange, j.name, fmt.Sprintf("panel %q: %s", panel, reason))
			}
		}
	}
	log.Info("analysis complete",
		zap.Int("rows", sum.Rows),
		zap.Int("columns", sum.Columns),
		zap.Int("artifacts", len(b.Artifacts())),
		zap.Int("errors", len(b.Errors)),
		zap.Duration("took", time.Since(start)))
	if err := ctx.Err(); err != nil {
		return b, err
	}
	return b, nil
}

// render draws and encodes one chart; the figure is released on every path.
func render(j job) (a *artifact.Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("render %s: panic: %v", j.name, r)
		}
	}()
	fig, err := j.render()
	if err != nil {
		return nil, err
	}
	defer fig.Close()
	art, err := artifact.Encode(fig)
	if err != nil {
		return nil, err
	}
	return &art, nil
}

// Classify maps an error to its ErrorKind.
func Classify(err error) ErrorKind {
	var le *dataset.LoadError
	var pe *analysis.ProfileError
	var ee *artifact.EncodeError
	switch {
	case errors.As(err, &le):
		return KindLoad
	case errors.As(err, &pe):
		return KindProfile
	case errors.Is(err, analysis.ErrTargetNotFound):
		return KindTargetNotFound
	case errors.Is(err, analysis.ErrMultiClassTarget):
		return KindTargetClasses
	case errors.Is(err, charts.ErrNoPanels):
		return KindEmpty
	case errors.Is(err, charts.ErrSpanOverflow):
		return KindRange
	case errors.As(err, &ee):
		return KindEncode
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindRender
	}
}

func itoa(i int) string { return strconv.Itoa(i) }
