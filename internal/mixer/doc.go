// Package mixer implements the proportional volume mixer.
//
// A mixer is a set of channels whose weights sum to 1.0 (100%). When the
// user moves one channel, the remainder is shared out across the other
// active channels in proportion to their current weights:
//
//	out, err := mixer.Adjust([]model.Channel{
//	    {ID: "ocean", Weight: 0.5},
//	    {ID: "rain", Weight: 0.3},
//	    {ID: "forest", Weight: 0.2},
//	}, "ocean", 0.8)
//	// ocean 0.80, rain 0.12, forest 0.08
//
// Silent channels stay silent unless targeted directly. A request above
// 1.0 is an overflow and is handled by the Normalizer's OverflowPolicy.
//
// # Errors
//
// Errors belong to the errorx namespace "mixer":
//
//	_, err := mixer.Adjust(channels, "nope", 0.5)
//	mixer.IsInvalidChannel(err) // true
//
// # Stateful mixers
//
// Adjust is pure. Mixer wraps a channel set for callers that keep state
// between changes, and serializes calls on the same instance:
//
//	m, _ := mixer.New(mixer.Seed(ids, playing, saved, mixer.EvenSplit(ids)), mixer.Normalizer{})
//	m.Settle()
//	before, after, err := m.Set("rain", 0.4)
package mixer
