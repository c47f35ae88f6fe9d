package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeSheet writes a workbook with the given rows, top-left anchored, the
// way the banks export them: preamble junk first, the real header somewhere
// below it.
func writeSheet(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestParseChecking(t *testing.T) {
	cfg := defaultConfig()
	cfg.FiscalYear = "2025"
	path := filepath.Join(t.TempDir(), "cartola.xlsx")
	writeSheet(t, path, [][]interface{}{
		{"Banco Ejemplo"},
		{"Cartola cuenta corriente N° 123"},
		{},
		{"Fecha", "Descripción", "Cargo", "Abono"},
		{"02/03", "COPEC LAMPA", "$45.000", ""},
		{"03/03", "TRANSFERENCIA RECIBIDA", "", "$200.000"},
		{"04/03", "FILA SIN MONTOS", "", ""},
		{"", "Saldo final", "", ""},
	})

	charges, deposits, err := parseStatement(path, srcChecking, cfg)
	require.NoError(t, err)

	t.Run("cargoAbonoSplit", func(t *testing.T) {
		require.Len(t, charges, 1)
		require.Len(t, deposits, 1)
		require.Equal(t, "COPEC LAMPA", charges[0].Desc)
		require.Equal(t, int64(45000), charges[0].Amount)
		require.Equal(t, "TRANSFERENCIA RECIBIDA", deposits[0].Desc)
		require.Equal(t, int64(200000), deposits[0].Amount)
	})

	t.Run("fiscalYearCompletesDates", func(t *testing.T) {
		require.Equal(t, day(2025, 3, 2), charges[0].Date)
		require.Equal(t, day(2025, 3, 3), deposits[0].Date)
	})
}

func TestParseBilled(t *testing.T) {
	cfg := defaultConfig()
	cfg.USDRate = 950

	t.Run("domestic", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "facturado.xlsx")
		writeSheet(t, path, [][]interface{}{
			{"Estado de cuenta"},
			{"Fecha", "Descripción", "Categoría", "Cuotas", "Monto ($)"},
			{"05/03/2025", "LIDER EXPRESS", "Supermercado", "01/03", "$23.990"},
		})
		charges, _, err := parseStatement(path, srcBilled, cfg)
		require.NoError(t, err)
		require.Len(t, charges, 1)
		require.Equal(t, int64(23990), charges[0].Amount)
		require.Equal(t, "01/03", charges[0].Cuotas)
		require.Equal(t, "Supermercado", charges[0].Category)
		require.Zero(t, charges[0].USD)
	})

	t.Run("international", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "facturado-int.xlsx")
		writeSheet(t, path, [][]interface{}{
			{"Estado de cuenta internacional"},
			{"Fecha", "Descripción", "Categoría", "País", "Monto (US$)"},
			{"06/03/2025", "OPENAI CHATGPT", "Servicios", "US", "20.00"},
		})
		charges, _, err := parseStatement(path, srcBilled, cfg)
		require.NoError(t, err)
		require.Len(t, charges, 1)
		require.Equal(t, int64(19000), charges[0].Amount) // 20 USD at 950
		require.InDelta(t, 20.0, charges[0].USD, 0.0001)
		require.Equal(t, "US", charges[0].Country)
	})

	t.Run("schemaMismatch", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "raro.xlsx")
		writeSheet(t, path, [][]interface{}{
			{"Fecha", "Glosa", "Categoría"},
			{"05/03/2025", "ALGO", "Otro"},
		})
		_, _, err := parseStatement(path, srcBilled, cfg)
		var mismatch schemaMismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Contains(t, mismatch.missing, "monto ($)")
	})
}

func TestParseUnbilled(t *testing.T) {
	cfg := defaultConfig()
	path := filepath.Join(t.TempDir(), "nofacturado.xlsx")
	writeSheet(t, path, [][]interface{}{
		{"Movimientos no facturados"},
		{"Fecha", "Descripción", "Monto ($)"},
		{"07/03/2025", "COPEC APP", "$30.000"},
	})
	charges, _, err := parseStatement(path, srcUnbilled, cfg)
	require.NoError(t, err)
	require.Len(t, charges, 1)
	require.Empty(t, charges[0].Cuotas)
	require.Empty(t, charges[0].Category)
}

func TestHeaderDetection(t *testing.T) {
	cfg := defaultConfig()

	t.Run("markerOnRowSeven", func(t *testing.T) {
		rows := make([][]interface{}, 0, 9)
		for i := 0; i < 7; i++ {
			rows = append(rows, []interface{}{"preámbulo", ""})
		}
		rows = append(rows,
			[]interface{}{"Fecha", "Descripción", "Cargo", "Abono"},
			[]interface{}{"01/03", "COMPRA", "$1.000", ""},
		)
		require.Equal(t, 7, headerIndex(gridFromRows(t, rows), "descripción"))

		path := filepath.Join(t.TempDir(), "deep.xlsx")
		writeSheet(t, path, rows)
		charges, _, err := parseStatement(path, srcChecking, cfg)
		require.NoError(t, err)
		require.Len(t, charges, 1)
	})

	t.Run("noMarkerAnywhere", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sinheader.xlsx")
		writeSheet(t, path, [][]interface{}{
			{"esto", "no"},
			{"es", "una cartola"},
		})
		_, _, err := parseStatement(path, srcChecking, cfg)
		var notFound headerNotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func gridFromRows(t *testing.T, rows [][]interface{}) [][]string {
	t.Helper()
	grid := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, c := range row {
			if s, ok := c.(string); ok {
				cells[j] = s
			}
		}
		grid[i] = cells
	}
	return grid
}
