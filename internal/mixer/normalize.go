package mixer

import (
	"fmt"
	"math"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

// TargetTotal is the weight every adjusted mix sums to.
const TargetTotal = 1.0

// step is the rounding granularity of redistributed weights (one percent).
const step = 0.01

// OverflowPolicy decides what happens when a single channel is asked for
// more than the whole budget.
type OverflowPolicy int

const (
	// OverflowReset gives the changed channel the full budget and silences
	// every other channel.
	OverflowReset OverflowPolicy = iota

	// OverflowScale weighs the request against the other active channels
	// taken as one full budget: a request r gives the changed channel
	// r/(r+1) and the others share the rest in proportion.
	OverflowScale
)

// String returns the settings name of the policy.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowScale:
		return "scale"
	default:
		return "reset"
	}
}

// ParseOverflowPolicy parses "reset" or "scale". Empty means reset.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "reset":
		return OverflowReset, nil
	case "scale":
		return OverflowScale, nil
	default:
		return OverflowReset, fmt.Errorf("unknown overflow policy %q", s)
	}
}

// Normalizer keeps a set of channel weights summing to TargetTotal after a
// single channel changes, by redistributing the remainder across the other
// active channels in proportion to their current weights.
//
// Channels already at zero are never given weight by redistribution; they
// only change when targeted directly.
//
// Example:
//
//	n := Normalizer{}
//	out, err := n.Adjust([]model.Channel{
//	    {ID: "a", Weight: 0.5},
//	    {ID: "b", Weight: 0.3},
//	    {ID: "c", Weight: 0.2},
//	}, "a", 0.8)
//	// out = [a:0.8 b:0.12 c:0.08]
type Normalizer struct {
	// Overflow selects the behaviour for requests above TargetTotal.
	Overflow OverflowPolicy
}

// Adjust applies the default normalizer (OverflowReset).
func Adjust(channels []model.Channel, id string, requested float64) ([]model.Channel, error) {
	return Normalizer{}.Adjust(channels, id, requested)
}

// Adjust returns a new channel set in which channel id holds requested
// (clamped to [0, 1]) and the others have been rebalanced. The input slice
// is not modified.
//
// Three cases are handled:
//   - overflow (requested > 1): handled by the Overflow policy
//   - other channels active: they are scaled to share 1 - changed,
//     each rounded to the nearest 0.01
//   - no other channel active: only the changed channel moves and the
//     total may stay below 1
//
// A state that already holds the change, with the other active channels
// within half a step each of their share, is returned unchanged, so
// repeating a request is stable.
//
// Returns InvalidValue if requested is NaN or infinite, and InvalidChannel
// if id is not in channels.
func (n Normalizer) Adjust(channels []model.Channel, id string, requested float64) ([]model.Channel, error) {
	if math.IsNaN(requested) || math.IsInf(requested, 0) {
		return nil, InvalidValue.New("requested weight %v for channel %q is not a finite number", requested, id)
	}

	idx := indexOf(channels, id)
	if idx < 0 {
		return nil, InvalidChannel.New("channel %q does not exist", id)
	}

	changed := clamp(requested)

	out := make([]model.Channel, len(channels))
	copy(out, channels)

	var othersActive float64
	for i, c := range channels {
		if i != idx && c.Weight > 0 {
			othersActive += c.Weight
		}
	}

	if requested > TargetTotal {
		if n.Overflow != OverflowScale || othersActive == 0 {
			for i := range out {
				out[i].Weight = 0
			}
			out[idx].Weight = TargetTotal
			return out, nil
		}
		changed = scaledShare(requested)
	}

	remaining := TargetTotal - changed

	if channels[idx].Weight == changed && balanced(out, idx, remaining) {
		return out, nil
	}

	out[idx].Weight = changed
	// A pass that rounds a channel down to zero drops its share, so repeat
	// until the survivors hold the remainder. Each further pass silences at
	// least one more channel.
	for range len(out) {
		redistribute(out, idx, remaining)
		if balanced(out, idx, remaining) {
			break
		}
	}
	return out, nil
}

// scaledShare is the changed channel's weight under OverflowScale: the
// request weighed against the rest of the mix taken as one full budget.
// It depends on the request alone, so repeating a request is stable.
func scaledShare(requested float64) float64 {
	return round2(requested / (requested + TargetTotal) * TargetTotal)
}

// redistribute scales the active channels other than idx to share
// remaining, in place.
func redistribute(out []model.Channel, idx int, remaining float64) {
	var active float64
	for i, c := range out {
		if i != idx && c.Weight > 0 {
			active += c.Weight
		}
	}
	if active == 0 {
		return
	}
	for i, c := range out {
		if i == idx || c.Weight <= 0 {
			continue
		}
		out[i].Weight = round2(c.Weight / active * remaining)
	}
}

// balanced reports whether the active channels other than idx share
// remaining within half a step each, the drift one rounding pass leaves.
// Silent channels do not widen the margin.
func balanced(channels []model.Channel, idx int, remaining float64) bool {
	var sum float64
	var active int
	for i, c := range channels {
		if i != idx && c.Weight > 0 {
			sum += c.Weight
			active++
		}
	}
	if active == 0 {
		return true
	}
	return math.Abs(sum-remaining) <= step/2*float64(active)+1e-9
}

// Tolerance is the accepted drift from TargetTotal after redistributing
// across n active channels, one rounding step per channel.
func Tolerance(n int) float64 {
	return step*float64(n) + 1e-9
}

// Total returns the sum of all channel weights.
func Total(channels []model.Channel) float64 {
	return model.TotalWeight(channels)
}

func indexOf(channels []model.Channel, id string) int {
	for i, c := range channels {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(TargetTotal, v))
}

// round2 rounds to the nearest 0.01.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
