package dataset

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// loadXLSX reads the selected sheet of a workbook. The first non-empty row is the header.
// If SheetName is empty and SheetIndex <= 0, the first sheet is used.
func loadXLSX(name string, r io.Reader, opt Options) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, loadErr(name, fmt.Errorf("open xlsx: %w", err))
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt)
	if err != nil {
		return nil, loadErr(name, err)
	}
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, loadErr(name, fmt.Errorf("read sheet %q: %w", sheet, err))
	}
	// skip leading blank rows
	for len(all) > 0 && blankRow(all[0]) {
		all = all[1:]
	}
	if len(all) == 0 {
		return nil, loadErr(name, errors.New("no columns to parse"))
	}
	// GetRows drops trailing empty cells, so a blank last header cell makes the
	// header shorter than the data. Pad it; build names the gap "Unnamed: N".
	header := all[0]
	width := len(header)
	for _, rec := range all[1:] {
		if len(rec) > width {
			width = len(rec)
		}
	}
	if width > len(header) {
		header = append(append([]string(nil), header...), make([]string, width-len(header))...)
	}
	var rows [][]string
	dropped := 0
	for _, rec := range all[1:] {
		if blankRow(rec) {
			continue
		}
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			dropped++
			continue
		}
		rows = append(rows, rec)
	}
	ds, err := build(name, header, rows, opt)
	if err != nil {
		return nil, err
	}
	ds.Dropped = dropped
	return ds, nil
}

func pickSheet(sheets []string, opt Options) (string, error) {
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet %q not found", opt.SheetName)
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range (workbook has %d)", idx, len(sheets))
	}
	return sheets[idx-1], nil
}

func blankRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
