package report

import (
	"io"
	"strings"
	"testing"

	"github.com/KaramelBytes/churnscope/internal/artifact"
	"github.com/KaramelBytes/churnscope/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, n interface{ Render(w io.Writer) error }) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, n.Render(&b))
	return b.String()
}

func TestTableRendersIndexAndEscapes(t *testing.T) {
	out := render(t, Table(pipeline.Table{
		Columns: []string{"a", "<b>"},
		Index:   []string{"count"},
		Rows:    [][]string{{"1", "x&y"}},
	}, "Stats"))
	assert.Contains(t, out, "<caption>Stats</caption>")
	assert.Contains(t, out, "<th>count</th>")
	assert.Contains(t, out, "&lt;b&gt;")
	assert.Contains(t, out, "<td>x&amp;y</td>")
}

func TestPageListsArtifactsAndErrors(t *testing.T) {
	target := "churn"
	b := &pipeline.ResultBundle{
		ID:     "abc",
		Source: "bank.csv",
		Notice: "loaded the default dataset: bank",
		StatsLeft: []pipeline.Pair{
			{Label: "Records", Value: "10"},
		},
		MissingValues:  &artifact.Artifact{Name: "missing_values", MediaType: "image/png", Encoding: "base64", Data: "AAAA"},
		ResolvedTarget: &target,
		Missing:        []string{"histograms"},
		Errors:         []pipeline.Issue{{Kind: pipeline.KindTargetClasses, Artifact: "histograms", Message: "too many classes"}},
	}
	out := render(t, Page(b))
	assert.Contains(t, out, `<html lang="en">`)
	assert.Contains(t, out, "Analysis of bank.csv")
	assert.Contains(t, out, "loaded the default dataset: bank")
	assert.Contains(t, out, `src="data:image/png;base64,AAAA"`)
	assert.Contains(t, out, "histograms (target_classes): too many classes")
	assert.Contains(t, out, "Target column: churn")
	assert.Contains(t, out, "<th>Records</th><td>10</td>")
}

func TestUploadPage(t *testing.T) {
	out := render(t, UploadPage([]string{"bank", "telco"}, 50, "bad file"))
	assert.Contains(t, out, `enctype="multipart/form-data"`)
	assert.Contains(t, out, "up to 50 MB")
	assert.Contains(t, out, "sample=bank")
	assert.Contains(t, out, "sample=telco")
	assert.Contains(t, out, "Error: bad file")
}
