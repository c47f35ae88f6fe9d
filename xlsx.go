package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// readGrid reads the first sheet of a spreadsheet as an untyped grid. No
// header is assumed; the statement parser scans the grid for the real header
// row itself, because the banks put logos and account summaries above it.
func readGrid(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSVGrid(path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Errorf("no sheets in %s", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read rows from %s", path)
	}
	return rows, nil
}

// readCSVGrid reads a CSV export as a grid. The booking system writes a
// nonstandard CSV dialect that has to be normalized before encoding/csv will
// accept it.
func readCSVGrid(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}
	r := csv.NewReader(bytes.NewReader(normalizeCSVQuotes(data)))
	r.FieldsPerRecord = -1
	var grid [][]string
	for {
		cols, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read a csv line from %s", path)
		}
		grid = append(grid, cols)
	}
	return grid, nil
}

// normalizeCSVQuotes rewrites the booking system's CSV dialect into the
// standard one. Inside quoted fields the exporter escapes embedded quotes as
// \" and newlines as \n, neither of which encoding/csv accepts; the former
// becomes a doubled quote, the latter a literal newline. A backslash outside
// a quoted field is plain data and passes through untouched.
func normalizeCSVQuotes(data []byte) []byte {
	out := make([]byte, 0, len(data))
	quoted := false
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b == '"':
			quoted = !quoted
			out = append(out, b)
		case quoted && b == '\\' && i+1 < len(data):
			i++
			switch data[i] {
			case '"':
				out = append(out, '"', '"')
			case 'n':
				out = append(out, '\n')
			default:
				out = append(out, data[i])
			}
		default:
			out = append(out, b)
		}
	}
	return out
}

// headerIndex returns the 0-based index of the first row that contains the
// marker token in any cell (case-insensitive, trimmed), or -1.
func headerIndex(grid [][]string, marker string) int {
	marker = strings.ToLower(marker)
	for i, row := range grid {
		for _, cell := range row {
			if strings.ToLower(strings.TrimSpace(cell)) == marker {
				return i
			}
		}
	}
	return -1
}

// columnMap maps lower-cased, trimmed header names to column positions. When a
// header repeats, the first occurrence wins.
func columnMap(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, ok := m[key]; !ok {
			m[key] = i
		}
	}
	return m
}

// cellAt returns the trimmed cell at column idx, tolerating the ragged rows
// excelize produces when trailing cells are empty.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// writeTable writes one canonical output table as a single-sheet workbook.
// The write is atomic: the workbook is saved next to the destination and
// renamed over it, so a crashed run never leaves a half-written table behind.
// The temp name keeps the destination's base name as a suffix because the
// writer validates the extension of whatever path it is asked to save.
func writeTable(path string, header []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	hrow := make([]interface{}, len(header))
	for i, h := range header {
		hrow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hrow); err != nil {
		return errors.Wrap(err, "unable to write header row")
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "unable to compute cell name")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "unable to write row %d", i+2)
		}
	}

	dir, base := filepath.Split(path)
	tmp := filepath.Join(dir, fmt.Sprintf("~%d-%s", os.Getpid(), base))
	if err := f.SaveAs(tmp); err != nil {
		return errors.Wrapf(err, "unable to save %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "unable to replace %s", path)
	}
	return nil
}
