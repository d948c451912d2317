package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/churnscope/internal/pipeline"
	"github.com/KaramelBytes/churnscope/internal/samples"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func bankCSV() string {
	var b strings.Builder
	b.WriteString("age,balance,country,churn\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "%d,%d,%s,%d\n", 20+i, 100*i, []string{"FR", "ES", "DE"}[i%3], i%2)
	}
	return b.String()
}

func setup(t *testing.T, withSamples bool) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	if withSamples {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.csv"), []byte(bankCSV()), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "telco.csv"), []byte("tenure,Churn\n1,Yes\n5,No\n"), 0o644))
	}
	opt := pipeline.DefaultOptions()
	opt.Style.WidthIn, opt.Style.PanelHeightIn, opt.Style.DPI = 6, 3, 20
	opt.Style.TitleSize, opt.Style.LabelSize, opt.Style.TickSize = 8, 6, 5
	s := New(Config{UploadLimitMB: 1, Samples: samples.Catalog{Dir: dir}, Analyze: opt}, zaptest.NewLogger(t))
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func decodeBundle(t *testing.T, resp *http.Response) map[string]json.RawMessage {
	t.Helper()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var m map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func TestSamplesEndpoint(t *testing.T) {
	srv := setup(t, true)
	resp, err := http.Get(srv.URL + "/samples")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Samples []string `json:"samples"`
		Default string   `json:"default"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"bank", "telco"}, body.Samples)
	assert.Equal(t, "bank", body.Default)
}

func TestAnalyzeMultipartUpload(t *testing.T) {
	srv := setup(t, false)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "bank.csv")
	require.NoError(t, err)
	_, _ = io.WriteString(fw, bankCSV())
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/analyze", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	m := decodeBundle(t, resp)
	assert.JSONEq(t, `"churn"`, string(m["resolved_target"]))
	for _, k := range []string{"correlation_matrix", "missing_values", "categorical_plots", "numerical_plots", "histograms"} {
		assert.NotEqual(t, "null", string(m[k]), k)
	}
	assert.JSONEq(t, `"bank.csv"`, string(m["source"]))
}

func TestAnalyzeRawBodyWithTarget(t *testing.T) {
	srv := setup(t, false)
	resp, err := http.Post(srv.URL+"/analyze?name=x.csv&target=country", "text/csv", strings.NewReader(bankCSV()))
	require.NoError(t, err)
	m := decodeBundle(t, resp)
	assert.JSONEq(t, `"country"`, string(m["resolved_target"]))
	// three countries: histograms are omitted with a target_classes error
	assert.Equal(t, "null", string(m["histograms"]))
	assert.Contains(t, string(m["errors"]), "target_classes")
}

func TestAnalyzeSampleAndDefault(t *testing.T) {
	srv := setup(t, true)
	resp, err := http.Post(srv.URL+"/analyze?sample=telco", "", nil)
	require.NoError(t, err)
	m := decodeBundle(t, resp)
	assert.JSONEq(t, `"Churn"`, string(m["resolved_target"]))
	_, hasNotice := m["notice"]
	assert.False(t, hasNotice)

	resp, err = http.Post(srv.URL+"/analyze", "", nil)
	require.NoError(t, err)
	m = decodeBundle(t, resp)
	assert.JSONEq(t, `"loaded the default dataset: bank"`, string(m["notice"]))

	resp, err = http.Post(srv.URL+"/analyze?sample=nope", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnalyzeErrors(t *testing.T) {
	srv := setup(t, false)
	resp, err := http.Post(srv.URL+"/analyze", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/analyze?name=bad.csv", "text/csv", strings.NewReader("a,b\n1,2,3\n"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "load", body["kind"])

	big := strings.Repeat("x", (1<<20)+512)
	resp2, err := http.Post(srv.URL+"/analyze", "text/csv", strings.NewReader(big))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp2.StatusCode)
}

func TestHTMLPages(t *testing.T) {
	srv := setup(t, true)
	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(page), "multipart/form-data")
	assert.Contains(t, string(page), "telco")

	resp, err = http.Post(srv.URL+"/analyze?format=html&sample=bank", "", nil)
	require.NoError(t, err)
	page, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(page), "data:image/png;base64,")
	assert.Contains(t, string(page), "Descriptive statistics")
}
