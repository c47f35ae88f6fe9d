package main

import (
	"fmt"
	"sort"
)

type consolidateStats struct {
	Kept            int
	DroppedExcluded int
	DroppedNegative int
	DroppedDup      int
}

// consolidate builds the final ledger out of the per-source batches. The
// steps, in order: drop descriptions on the unconditional exclusion list,
// drop negative amounts (refunds and reversals are not expenses), dedup on
// (date, description, amount) keeping the first occurrence, assign category
// and group, sort. The sort key includes description and amount as tie
// breakers so the ledger comes out byte-identical no matter in which order
// the source files were enumerated.
func consolidate(batches [][]txn, cfg *config) ([]txn, consolidateStats) {
	var stats consolidateStats
	seen := make(map[string]bool)
	var out []txn

	for _, batch := range batches {
		for _, t := range batch {
			if cfg.excluded(t.Desc) {
				stats.DroppedExcluded++
				continue
			}
			if t.Amount < 0 {
				stats.DroppedNegative++
				continue
			}
			key := dedupKey(t)
			if seen[key] {
				stats.DroppedDup++
				continue
			}
			seen[key] = true
			t.Category = cfg.Categories.categorize(t.Desc)
			t.Group = categorizeGroup(t.Category, cfg.Groups)
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Desc != b.Desc {
			return a.Desc < b.Desc
		}
		return a.Amount < b.Amount
	})
	stats.Kept = len(out)
	return out, stats
}

func dedupKey(t txn) string {
	return fmt.Sprintf("%s|%s|%d", t.Date.Format("2006-01-02"), t.Desc, t.Amount)
}

// ledgerHeader is the canonical column order of the consolidated ledger.
var ledgerHeader = []string{
	"Fecha", "Descripción", "Categoría", "Grupo", "Monto",
	"Cuotas", "País", "Monto US$",
}

// ledgerRows projects the ledger onto its output columns. Optional
// source-specific fields are preserved where present and left blank
// elsewhere.
func ledgerRows(txns []txn) [][]interface{} {
	rows := make([][]interface{}, 0, len(txns))
	for _, t := range txns {
		var usd interface{}
		if t.USD != 0 {
			usd = t.USD
		}
		rows = append(rows, []interface{}{
			t.Date.Format("2006-01-02"), t.Desc, t.Category, t.Group, t.Amount,
			t.Cuotas, t.Country, usd,
		})
	}
	return rows
}
