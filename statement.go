package main

import (
	"fmt"
	"strings"
	"time"
)

// txn is the canonical transaction every statement variant is normalized
// into. Amount is always pesos; USD keeps the original foreign amount for
// audit when the row came from an international card movement.
type txn struct {
	Date     time.Time
	Desc     string
	Amount   int64
	USD      float64
	Cuotas   string
	Country  string
	Category string
	Group    string
}

// sourceType is declared by the caller per file. The engine never sniffs file
// names; whoever discovered the file says what it is.
type sourceType int

const (
	srcChecking sourceType = iota // cartola cuenta corriente
	srcBilled                     // movimientos facturados tarjeta
	srcUnbilled                   // movimientos no facturados tarjeta
)

func (s sourceType) String() string {
	switch s {
	case srcChecking:
		return "cartola"
	case srcBilled:
		return "facturado"
	case srcUnbilled:
		return "no-facturado"
	}
	return fmt.Sprintf("sourceType(%d)", int(s))
}

// marker is the header token scanned for. The cartola and the unbilled export
// have no category column, so their descriptions column is the anchor; the
// billed export is anchored on its category column.
func (s sourceType) marker() string {
	if s == srcBilled {
		return "categoría"
	}
	return "descripción"
}

type headerNotFoundError struct {
	path   string
	marker string
}

func (e headerNotFoundError) Error() string {
	return fmt.Sprintf("%s: no row contains header token %q", e.path, e.marker)
}

type schemaMismatchError struct {
	path    string
	variant string
	missing []string
}

func (e schemaMismatchError) Error() string {
	return fmt.Sprintf("%s: %s layout is missing columns: %s",
		e.path, e.variant, strings.Join(e.missing, ", "))
}

// parseStatement normalizes one statement file into canonical transactions.
// It reads the sheet as an untyped grid, locates the true header row by
// content (banks stack logos and summaries above it, at varying offsets),
// then branches on the declared source type. charges are the rows that feed
// the expense ledger; deposits only come out of the cartola's abono column
// and are reported separately. Errors are fatal for this file only; the
// caller drops the file in full and the run continues.
func parseStatement(path string, src sourceType, cfg *config) (charges, deposits []txn, err error) {
	grid, err := readGrid(path)
	if err != nil {
		return nil, nil, err
	}
	offset := headerIndex(grid, src.marker())
	if offset < 0 {
		return nil, nil, headerNotFoundError{path: path, marker: src.marker()}
	}
	cols := columnMap(grid[offset])
	rows := grid[offset+1:]

	switch src {
	case srcChecking:
		return parseChecking(path, rows, cols, cfg)
	case srcBilled:
		charges, err = parseBilled(path, rows, cols, cfg)
	case srcUnbilled:
		charges, err = parseUnbilled(path, rows, cols, cfg)
	}
	return charges, nil, err
}

// requireColumns resolves the named columns, or reports the whole missing set
// at once so the operator sees everything wrong with the layout in one line.
func requireColumns(path, variant string, cols map[string]int, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, name := range names {
		pos, ok := cols[name]
		if !ok {
			missing = append(missing, name)
			pos = -1
		}
		idx[i] = pos
	}
	if len(missing) > 0 {
		return nil, schemaMismatchError{path: path, variant: variant, missing: missing}
	}
	return idx, nil
}

// parseChecking handles the cartola. Dates come as day/month only and are
// completed with the configured fiscal year. Each row carries either a cargo
// (charge) or an abono (deposit); a row with both columns empty belongs to
// neither batch.
func parseChecking(path string, rows [][]string, cols map[string]int, cfg *config) (charges, deposits []txn, err error) {
	idx, err := requireColumns(path, "cartola", cols, "fecha", "descripción", "cargo", "abono")
	if err != nil {
		return nil, nil, err
	}
	fecha, desc, cargo, abono := idx[0], idx[1], idx[2], idx[3]

	for _, row := range rows {
		date, ok := parseCheckingDate(cellAt(row, fecha), cfg.FiscalYear)
		if !ok {
			continue // summary and total rows below the table
		}
		t := txn{Date: date, Desc: cellAt(row, desc)}
		if t.Desc == "" {
			continue
		}
		switch {
		case cellAt(row, cargo) != "":
			t.Amount = parseAmount(cellAt(row, cargo))
			charges = append(charges, t)
		case cellAt(row, abono) != "":
			t.Amount = parseAmount(cellAt(row, abono))
			deposits = append(deposits, t)
		}
	}
	return charges, deposits, nil
}

// parseBilled handles billed card movements. The international sub-variant is
// detected by the presence of the foreign-amount column, not declared: the
// bank ships both layouts under the same export name.
func parseBilled(path string, rows [][]string, cols map[string]int, cfg *config) ([]txn, error) {
	if _, intl := cols["monto (us$)"]; intl {
		idx, err := requireColumns(path, "facturado internacional", cols,
			"fecha", "descripción", "categoría", "país", "monto (us$)")
		if err != nil {
			return nil, err
		}
		l := newCardLayout()
		l.fecha, l.desc, l.categoria, l.pais, l.usd = idx[0], idx[1], idx[2], idx[3], idx[4]
		l.rate = cfg.USDRate
		return parseCardRows(rows, l), nil
	}
	idx, err := requireColumns(path, "facturado nacional", cols,
		"fecha", "descripción", "categoría", "cuotas", "monto ($)")
	if err != nil {
		return nil, err
	}
	l := newCardLayout()
	l.fecha, l.desc, l.categoria, l.cuotas, l.monto = idx[0], idx[1], idx[2], idx[3], idx[4]
	return parseCardRows(rows, l), nil
}

// parseUnbilled handles unbilled card movements: the same domestic vs.
// international branch, minus the installment and category columns the bank
// only fills in once a movement is billed.
func parseUnbilled(path string, rows [][]string, cols map[string]int, cfg *config) ([]txn, error) {
	if _, intl := cols["monto (us$)"]; intl {
		idx, err := requireColumns(path, "no facturado internacional", cols,
			"fecha", "descripción", "país", "monto (us$)")
		if err != nil {
			return nil, err
		}
		l := newCardLayout()
		l.fecha, l.desc, l.pais, l.usd = idx[0], idx[1], idx[2], idx[3]
		l.rate = cfg.USDRate
		return parseCardRows(rows, l), nil
	}
	idx, err := requireColumns(path, "no facturado nacional", cols,
		"fecha", "descripción", "monto ($)")
	if err != nil {
		return nil, err
	}
	l := newCardLayout()
	l.fecha, l.desc, l.monto = idx[0], idx[1], idx[2]
	return parseCardRows(rows, l), nil
}

// cardLayout is the column selection for one card sub-variant. An index of
// -1 means the column does not exist in this sub-variant.
type cardLayout struct {
	fecha, desc int
	monto       int
	usd         int
	cuotas      int
	categoria   int
	pais        int
	rate        float64
}

func newCardLayout() cardLayout {
	return cardLayout{monto: -1, usd: -1, cuotas: -1, categoria: -1, pais: -1}
}

func parseCardRows(rows [][]string, l cardLayout) []txn {
	var out []txn
	for _, row := range rows {
		date, ok := parseCardDate(cellAt(row, l.fecha))
		if !ok {
			continue
		}
		t := txn{Date: date, Desc: cellAt(row, l.desc)}
		if t.Desc == "" {
			continue
		}
		if l.usd >= 0 {
			t.USD = parseUSD(cellAt(row, l.usd))
			t.Amount = convertForeign(t.USD, l.rate)
		} else {
			t.Amount = parseAmount(cellAt(row, l.monto))
		}
		t.Cuotas = cellAt(row, l.cuotas)
		t.Category = cellAt(row, l.categoria)
		t.Country = cellAt(row, l.pais)
		out = append(out, t)
	}
	return out
}

// parseCheckingDate completes a "DD/MM" cartola date with the fiscal year.
// Rows that already carry a full date are accepted as-is.
func parseCheckingDate(raw, fiscalYear string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if strings.Count(raw, "/") == 1 {
		raw = raw + "/" + fiscalYear
	}
	return parseCardDate(raw)
}

func parseCardDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"02/01/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
