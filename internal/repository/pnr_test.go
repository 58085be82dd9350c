package repository

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePNR(t *testing.T) {
	format := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		pnr, err := GeneratePNR()
		require.NoError(t, err)
		assert.Regexp(t, format, pnr)
		seen[pnr] = struct{}{}
	}
	assert.Greater(t, len(seen), 495)
}

func TestGeneratePNR_UsesWholeAlphabet(t *testing.T) {
	counts := make(map[rune]int)
	for i := 0; i < 2000; i++ {
		pnr, err := GeneratePNR()
		require.NoError(t, err)
		for _, r := range pnr {
			counts[r]++
		}
	}
	assert.Len(t, counts, len(pnrAlphabet))
}
