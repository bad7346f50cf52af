package model

import (
	"math"
	"sort"
)

// Channel is one audio source's contribution to a mix.
//
// Weight is the channel's share of total output volume, in [0, 1].
type Channel struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// Active reports whether the channel contributes any volume.
func (c Channel) Active() bool {
	return c.Weight > 0
}

// Mix is a flat mapping from channel ID to weight. It is the persisted form
// of a mixer state and serializes as a JSON object:
//
//	{"ocean": 0.4, "rain": 0.6}
type Mix map[string]float64

// Total returns the sum of all weights.
func (m Mix) Total() float64 {
	var total float64
	for _, w := range m {
		total += w
	}
	return total
}

// Clean returns a copy with unknown IDs and non-finite values removed and
// the remaining weights clamped to [0, 1]. A nil catalogue keeps every ID.
func (m Mix) Clean(c *Catalogue) Mix {
	out := make(Mix, len(m))
	for id, w := range m {
		if c != nil && !c.Has(id) {
			continue
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			continue
		}
		out[id] = math.Max(0, math.Min(1, w))
	}
	return out
}

// Channels returns the mix as channels in the order of ids. IDs missing
// from the mix get weight 0.
func (m Mix) Channels(ids []string) []Channel {
	out := make([]Channel, len(ids))
	for i, id := range ids {
		out[i] = Channel{ID: id, Weight: m[id]}
	}
	return out
}

// MixFromChannels converts channels back to a Mix.
func MixFromChannels(channels []Channel) Mix {
	m := make(Mix, len(channels))
	for _, c := range channels {
		m[c.ID] = c.Weight
	}
	return m
}

// SortedByWeight returns the active channels heaviest first. Ties keep ID order.
func SortedByWeight(channels []Channel) []Channel {
	var out []Channel
	for _, c := range channels {
		if c.Active() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight == out[j].Weight {
			return out[i].ID < out[j].ID
		}
		return out[i].Weight > out[j].Weight
	})
	return out
}

// Percent converts a weight to whole percent for display.
func Percent(w float64) int {
	return int(math.Round(w * 100))
}

// TotalWeight sums channel weights.
func TotalWeight(channels []Channel) float64 {
	var total float64
	for _, c := range channels {
		total += c.Weight
	}
	return total
}
