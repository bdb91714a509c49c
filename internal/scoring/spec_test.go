package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeightsSumTo100(t *testing.T) {
	var sum float64
	for _, key := range Categories {
		w, ok := Default.Weights[key]
		require.True(t, ok, "missing weight for category %s", key)
		assert.Greater(t, w, 0.0)
		sum += w
	}
	assert.Equal(t, 100.0, sum)
}

func TestDefaultCatalogComplete(t *testing.T) {
	assert.Len(t, Default.Weights, len(Categories))
	assert.Len(t, Default.Checks, len(Categories))

	for _, key := range Categories {
		defs := Default.Checks[key]
		require.NotEmpty(t, defs, "category %s has no checks", key)

		seen := map[string]bool{}
		for _, def := range defs {
			assert.NotEmpty(t, def.Name)
			assert.False(t, seen[def.Name], "duplicate check %s in category %s", def.Name, key)
			seen[def.Name] = true
		}
	}
}

func TestDefaultGates(t *testing.T) {
	assert.Equal(t, []string{
		GatePaymentsOnMobile,
		GateHasPreview,
		GateLCPUnder4s,
		GateRefundPolicyVisible,
		GateEventsWired,
	}, Default.Gates)
}

func TestManualAndAssumedSourcesMatchEngine(t *testing.T) {
	// Categories G and H carry no automated signal at all.
	for _, key := range []CategoryKey{CategoryG, CategoryH} {
		for _, def := range Default.Checks[key] {
			assert.Equal(t, SourceManual, def.Source, "%s/%s", key, def.Name)
		}
	}

	sources := map[string]Source{}
	for _, def := range Default.Checks[CategoryC] {
		sources[def.Name] = def.Source
	}
	assert.Equal(t, SourceAssumed, sources["price_<=49"])
	assert.Equal(t, SourceAssumed, sources["transparent_pricing_page"])
	assert.Equal(t, SourceManual, sources["timeboxed_promo"])
}

func TestThresholdOrdering(t *testing.T) {
	th := Default.Thresholds
	assert.Less(t, th.LCPGoodSeconds, th.LCPPoorSeconds)
	assert.Less(t, th.INPGoodMillis, th.INPPoorMillis)
	assert.Less(t, th.CLSGood, th.CLSPoor)
	assert.Less(t, th.TapTargetMinPx, th.TapTargetBonusPx)
}
