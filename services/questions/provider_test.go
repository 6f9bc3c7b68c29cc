package questions

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestProvider(t *testing.T) *CSVProvider {
	t.Helper()
	provider, err := NewCSVProvider(rand.New(rand.NewSource(1)))
	assert.NoError(t, err)
	return provider
}

func TestProviderLoadsEmbeddedPools(t *testing.T) {
	provider := newTestProvider(t)

	assert.NotEmpty(t, provider.pools[DefaultLanguage])
	assert.NotEmpty(t, provider.pools["de"])
}

func TestDrawReturnsDistinctPrompts(t *testing.T) {
	provider := newTestProvider(t)

	pair, err := provider.Draw("en", nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.Prompt)
	assert.NotEmpty(t, pair.ImposterPrompt)
	assert.NotEqual(t, pair.Prompt, pair.ImposterPrompt)
}

func TestDrawSkipsUsedIDs(t *testing.T) {
	provider := newTestProvider(t)
	poolSize := len(provider.pools["en"])

	var used []int
	seen := map[int]bool{}
	for i := 0; i < poolSize; i++ {
		pair, err := provider.Draw("en", used)
		assert.NoError(t, err)
		assert.False(t, seen[pair.ID], "pair %d repeated before pool exhaustion", pair.ID)
		seen[pair.ID] = true
		used = append(used, pair.ID)
	}
}

func TestDrawResetsExhaustedPool(t *testing.T) {
	provider := newTestProvider(t)

	all := make([]int, 0, len(provider.pools["en"]))
	for _, pair := range provider.pools["en"] {
		all = append(all, pair.ID)
	}

	pair, err := provider.Draw("en", all)
	assert.NoError(t, err)
	assert.Contains(t, all, pair.ID, "an exhausted pool recycles")
}

func TestDrawFallsBackToDefaultLanguage(t *testing.T) {
	provider := newTestProvider(t)

	pair, err := provider.Draw("xx", nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.Prompt)
}
