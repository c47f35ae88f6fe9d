package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestConsolidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Exclude = []string{"Traspaso entre cuentas propias"}

	a := []txn{
		{Date: day(2025, 3, 2), Desc: "COPEC LAMPA", Amount: 45000},
		{Date: day(2025, 3, 1), Desc: "FACEBK ADS", Amount: 90000},
		{Date: day(2025, 3, 3), Desc: "Traspaso entre cuentas propias", Amount: 500000},
	}
	b := []txn{
		{Date: day(2025, 3, 2), Desc: "COPEC LAMPA", Amount: 45000}, // dup of a[0]
		{Date: day(2025, 3, 2), Desc: "REVERSA COMPRA", Amount: -12000},
		{Date: day(2025, 3, 4), Desc: "GOOGLE ADS CL", Amount: 30000},
	}

	t.Run("filtersDedupsAndSorts", func(t *testing.T) {
		out, stats := consolidate([][]txn{a, b}, cfg)
		require.Equal(t, 3, stats.Kept)
		require.Equal(t, 1, stats.DroppedDup)
		require.Equal(t, 1, stats.DroppedNegative)
		require.Equal(t, 1, stats.DroppedExcluded)

		require.Equal(t, "FACEBK ADS", out[0].Desc)
		require.Equal(t, "COPEC LAMPA", out[1].Desc)
		require.Equal(t, "GOOGLE ADS CL", out[2].Desc)
	})

	t.Run("assignsCategoryAndGroup", func(t *testing.T) {
		out, _ := consolidate([][]txn{a, b}, cfg)
		require.Equal(t, "Publicidad Meta", out[0].Category)
		require.Equal(t, "Costos Variables", out[0].Group)
		require.Equal(t, "Combustible", out[1].Category)
		require.Equal(t, "Costos Variables", out[1].Group)
	})

	t.Run("deterministicAcrossBatchOrder", func(t *testing.T) {
		first, _ := consolidate([][]txn{a, b}, cfg)
		second, _ := consolidate([][]txn{b, a}, cfg)
		require.Equal(t, first, second)
	})

	t.Run("idempotent", func(t *testing.T) {
		once, _ := consolidate([][]txn{a, b}, cfg)
		twice, stats := consolidate([][]txn{once}, cfg)
		require.Equal(t, once, twice)
		require.Zero(t, stats.DroppedDup)
	})
}
