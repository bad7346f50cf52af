// Package model defines the core data structures used throughout
// calm-sounds.
//
// # Sound
//
// Sound describes one looping ambient track and where its file lives:
//
//	cat := model.DefaultCatalogue()
//	s, _ := cat.Get("ocean")
//	fmt.Println(s.Label()) // "🌊 Ocean Waves"
//
// # Channel and Mix
//
// A Channel is one sound's share of a mixer's output. A Mix is the flat
// id → weight mapping that is saved and loaded:
//
//	mix := model.Mix{"ocean": 0.4, "rain": 0.6}
//	channels := mix.Channels(model.DefaultMixerSounds)
//	fmt.Println(model.Percent(model.TotalWeight(channels))) // 100
package model
