// Package voice owns exclusive, retrying execution of one cheer playback per
// guild.
package voice

import (
	"github.com/hazyhour/blazebot/internal/datastore"
)

// PickWeighted selects one clip from a weighted candidate set. rng must
// return a uniform value in [0, 1). A nil result means the set was empty,
// which is a normal outcome, not an error.
func PickWeighted(clips []datastore.CheerClip, rng func() float64) *datastore.CheerClip {
	if len(clips) == 0 {
		return nil
	}

	var total float64
	for i := range clips {
		total += clips[i].Weight
	}
	if total <= 0 {
		return &clips[0]
	}

	threshold := rng() * total
	for i := range clips {
		threshold -= clips[i].Weight
		if threshold <= 0 {
			return &clips[i]
		}
	}
	// Floating-point residue exhausted the walk; fall back to the first
	// candidate.
	return &clips[0]
}
