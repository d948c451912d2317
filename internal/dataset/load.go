package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Options controls how a dataset source is read.
type Options struct {
	// Delimiter for CSV. If 0, '\t' for .tsv names and ',' otherwise.
	Delimiter rune
	// Numeric parsing locale. Zero values mean plain Go float syntax.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// MaxRows limits rows kept; 0 means unlimited.
	MaxRows int
	// XLSX sheet selection. SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for dataset loading.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// LoadFile reads a CSV/TSV or XLSX file from disk.
func LoadFile(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadErr(path, fmt.Errorf("open: %w", err))
	}
	defer f.Close()
	return LoadReader(filepath.Base(path), f, opt)
}

// LoadBytes reads an uploaded dataset; name is used for format detection and reporting.
func LoadBytes(name string, data []byte, opt Options) (*Dataset, error) {
	return LoadReader(name, bytes.NewReader(data), opt)
}

// LoadReader reads a dataset from r. Names ending in .xlsx are parsed as workbooks.
func LoadReader(name string, r io.Reader, opt Options) (*Dataset, error) {
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		return loadXLSX(name, r, opt)
	}
	return loadDelimited(name, r, opt)
}

func loadDelimited(name string, src io.Reader, opt Options) (*Dataset, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name)
	}
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, loadErr(name, errors.New("no columns to parse"))
		}
		return nil, loadErr(name, fmt.Errorf("read header: %w", err))
	}
	var rows [][]string
	dropped := 0
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, loadErr(name, fmt.Errorf("read row %d: %w", line, err))
		}
		line++
		if len(rec) > len(header) {
			return nil, loadErr(name, fmt.Errorf("row %d: expected %d fields, saw %d", line, len(header), len(rec)))
		}
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			dropped++
			continue
		}
		row := make([]string, len(rec))
		copy(row, rec)
		rows = append(rows, row)
	}
	ds, err := build(name, header, rows, opt)
	if err != nil {
		return nil, err
	}
	ds.Dropped = dropped
	return ds, nil
}

// build turns a header and raw records into typed columns.
func build(name string, header []string, rows [][]string, opt Options) (*Dataset, error) {
	if len(header) == 0 {
		return nil, loadErr(name, errors.New("no columns to parse"))
	}
	names := headerNames(header)
	ds := &Dataset{Name: name, Rows: len(rows), Columns: make([]*Column, len(names))}
	for j, n := range names {
		raw := make([]string, len(rows))
		nulls := make([]bool, len(rows))
		numeric := true
		for i, rec := range rows {
			v := ""
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			raw[i] = v
			if isNullToken(v) {
				nulls[i] = true
				continue
			}
			if numeric {
				if _, ok := parseNumeric(v, opt); !ok {
					numeric = false
				}
			}
		}
		col := &Column{Name: n, Nulls: nulls}
		// An all-null column in a non-empty table reads as numeric (NaN);
		// columns of an empty table carry no evidence and read as categorical.
		if numeric && len(rows) > 0 {
			col.Kind = KindNumeric
			col.Nums = make([]float64, len(rows))
			for i, v := range raw {
				if nulls[i] {
					col.Nums[i] = math.NaN()
					continue
				}
				col.Nums[i], _ = parseNumeric(v, opt)
			}
		} else {
			col.Kind = KindCategorical
			col.Strs = raw
			for i := range raw {
				if nulls[i] {
					col.Strs[i] = ""
				}
			}
		}
		ds.Columns[j] = col
	}
	return ds, nil
}

// headerNames trims names, fills blanks and de-duplicates repeats with a numeric suffix.
func headerNames(header []string) []string {
	out := make([]string, len(header))
	seen := map[string]bool{}
	for i, h := range header {
		n := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		cand := n
		for k := 1; seen[cand]; k++ {
			cand = fmt.Sprintf("%s.%d", n, k)
		}
		seen[cand] = true
		out[i] = cand
	}
	return out
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00a0", "")
	dec, thou := opt.DecimalSeparator, opt.ThousandsSeparator
	if thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != 0 && dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
