package mixer

import "github.com/Ayushsahu75/mental-healthcare-hub/internal/model"

// silenceThreshold is the total below which a seeded mix counts as empty.
const silenceThreshold = 0.01

// Seed builds the initial channel set for ids.
//
// Each channel takes, in order of preference:
//  1. its current playback volume, if the sound is audible
//  2. its weight in the saved mix, if positive
//  3. zero
//
// If the seeded total is below one percent, fallback is used instead.
// Weights are clamped to [0, 1]; the result is not normalized, call
// Mixer.Settle for that.
func Seed(ids []string, playing, saved, fallback model.Mix) []model.Channel {
	channels := make([]model.Channel, len(ids))
	var total float64

	for i, id := range ids {
		w := 0.0
		switch {
		case playing[id] > 0:
			w = playing[id]
		case saved[id] > 0:
			w = saved[id]
		}
		w = clamp(w)
		channels[i] = model.Channel{ID: id, Weight: w}
		total += w
	}

	if total < silenceThreshold {
		for i, id := range ids {
			channels[i].Weight = clamp(fallback[id])
		}
	}

	return channels
}

// EvenSplit returns a mix that shares TargetTotal equally across ids,
// rounded to whole percent.
func EvenSplit(ids []string) model.Mix {
	mix := make(model.Mix, len(ids))
	if len(ids) == 0 {
		return mix
	}
	share := round2(TargetTotal / float64(len(ids)))
	for _, id := range ids {
		mix[id] = share
	}
	return mix
}
