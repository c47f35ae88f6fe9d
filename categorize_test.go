package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	dict := dictionary{
		{Name: "Publicidad Meta", Keywords: []string{"facebook"}},
		{Name: "Publicidad Google", Keywords: []string{"google", "facebook"}},
	}

	t.Run("firstDeclaredEntryWins", func(t *testing.T) {
		// Both entries match; dictionary declaration order decides, even
		// though the later entry matches on its first keyword.
		require.Equal(t, "Publicidad Meta", dict.categorize("google facebook ads"))
	})

	t.Run("caseInsensitiveSubstring", func(t *testing.T) {
		require.Equal(t, "Publicidad Google", dict.categorize("  GOOGLE ADWORDS CL  "))
	})

	t.Run("noMatch", func(t *testing.T) {
		require.Equal(t, uncategorized, dict.categorize("ferreteria san diego"))
		require.Equal(t, uncategorized, dict.categorize(""))
	})

	t.Run("deterministic", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			require.Equal(t, "Publicidad Meta", dict.categorize("google facebook ads"))
		}
	})
}

func TestCategorizeGroup(t *testing.T) {
	groups := dictionary{
		{Name: "Costos Fijos", Keywords: []string{"arriendo", "sueldos"}},
		{Name: "Costos Variables", Keywords: []string{"publicidad", "combustible"}},
	}
	require.Equal(t, "Costos Variables", categorizeGroup("Publicidad Meta", groups))
	require.Equal(t, "Costos Fijos", categorizeGroup("Arriendo", groups))
	require.Equal(t, uncategorized, categorizeGroup(uncategorized, groups))
}
