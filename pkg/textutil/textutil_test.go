package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "Engenharia Civil", expected: "engenhariacivil"},
		{input: "  CIÊNCIAS\tda  Computação\n", expected: "ciênciasdacomputação"},
		{input: "", expected: ""},
	}

	for _, row := range table {
		require.Equal(t, row.expected, NormalizeName(row.input))
	}
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName("Engenharia Civil", nil))
	require.True(t, MatchName("Engenharia Civil", []string{"engenharia civil"}))
	require.True(t, MatchName("Engenharia Civil", []string{"medicina", "CIVIL"}))
	require.False(t, MatchName("Engenharia Civil", []string{"medicina"}))
}
