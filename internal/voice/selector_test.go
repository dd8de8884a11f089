package voice

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhour/blazebot/internal/datastore"
)

func clipSet(weights ...float64) []datastore.CheerClip {
	clips := make([]datastore.CheerClip, len(weights))
	for i, w := range weights {
		clips[i] = datastore.CheerClip{ID: string(rune('a' + i)), Weight: w}
	}
	return clips
}

func TestPickWeightedEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, PickWeighted(nil, rand.Float64))
	assert.Nil(t, PickWeighted([]datastore.CheerClip{}, rand.Float64))
}

func TestPickWeightedSingleCandidate(t *testing.T) {
	clips := clipSet(1)
	got := PickWeighted(clips, rand.Float64)
	require.NotNil(t, got)
	assert.Equal(t, clips[0].ID, got.ID)
}

func TestPickWeightedApproximatesDistribution(t *testing.T) {
	clips := clipSet(1, 1, 2)
	rng := rand.New(rand.NewPCG(42, 0))

	const trials = 10000
	counts := make(map[string]int)
	for range trials {
		got := PickWeighted(clips, rng.Float64)
		require.NotNil(t, got)
		counts[got.ID]++
	}

	// Weight 2 out of total 4 should win about half the draws.
	heavy := float64(counts[clips[2].ID]) / trials
	assert.InDelta(t, 0.5, heavy, 0.03)
	assert.InDelta(t, 0.25, float64(counts[clips[0].ID])/trials, 0.03)
}

func TestPickWeightedFavorsHeavierClip(t *testing.T) {
	// Weights [1, 3] should favor the heavy clip about three quarters of
	// the time.
	clips := clipSet(1, 3)
	rng := rand.New(rand.NewPCG(7, 0))

	const trials = 10000
	heavy := 0
	for range trials {
		if PickWeighted(clips, rng.Float64).ID == clips[1].ID {
			heavy++
		}
	}
	assert.InDelta(t, 0.75, float64(heavy)/trials, 0.03)
}

func TestPickWeightedResidueFallsBackToFirst(t *testing.T) {
	clips := clipSet(1, 1)
	// An rng at the very top of the range can leave a positive remainder
	// after the walk; the selector must still return a candidate.
	got := PickWeighted(clips, func() float64 { return 0.9999999999999999 })
	require.NotNil(t, got)
}

func TestPickWeightedZeroTotalReturnsFirst(t *testing.T) {
	clips := clipSet(0, 0)
	got := PickWeighted(clips, rand.Float64)
	require.NotNil(t, got)
	assert.Equal(t, clips[0].ID, got.ID)
}
