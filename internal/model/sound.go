package model

import "sort"

// Category groups sounds the way the sound page tabs do.
type Category string

const (
	CategoryNature     Category = "nature"
	CategoryMusic      Category = "music"
	CategoryMeditation Category = "meditation"
)

// Sound represents one looping audio source that can be played on its own
// or mixed with others.
//
// Example:
//
//	s := Sound{ID: "rain", Title: "Rain", Icon: "🌧️", File: "rain.mp3", Category: CategoryNature}
//	fmt.Println(s.Label()) // "🌧️ Rain"
type Sound struct {
	// ID is the stable identifier, also used as the channel ID in mixes.
	ID string

	// Title is the human readable name.
	Title string

	// Icon is a single emoji shown next to the title.
	Icon string

	// File is the asset file name, relative to the sounds directory.
	File string

	// Category is the tab the sound is listed under.
	Category Category
}

// Label returns the icon and title joined for display.
func (s Sound) Label() string {
	if s.Icon == "" {
		return s.Title
	}
	return s.Icon + " " + s.Title
}

// Catalogue is an ordered, ID-indexed set of sounds.
type Catalogue struct {
	sounds []Sound
	byID   map[string]int
}

// NewCatalogue creates a catalogue from sounds. Later duplicates of an ID are ignored.
func NewCatalogue(sounds ...Sound) *Catalogue {
	c := &Catalogue{byID: make(map[string]int, len(sounds))}
	for _, s := range sounds {
		if _, ok := c.byID[s.ID]; ok {
			continue
		}
		c.byID[s.ID] = len(c.sounds)
		c.sounds = append(c.sounds, s)
	}
	return c
}

// DefaultCatalogue returns the built-in calming sounds.
func DefaultCatalogue() *Catalogue {
	return NewCatalogue(
		Sound{ID: "ocean", Title: "Ocean Waves", Icon: "🌊", File: "ocean-waves.mp3", Category: CategoryNature},
		Sound{ID: "rain", Title: "Rain", Icon: "🌧️", File: "rain.mp3", Category: CategoryNature},
		Sound{ID: "forest", Title: "Forest", Icon: "🌲", File: "forest.mp3", Category: CategoryNature},
		Sound{ID: "fire", Title: "Fireplace", Icon: "🔥", File: "fireplace.mp3", Category: CategoryNature},
		Sound{ID: "ambient", Title: "Ambient Music", Icon: "🎵", File: "ambient-music.mp3", Category: CategoryMusic},
		Sound{ID: "piano", Title: "Piano", Icon: "🎼", File: "piano.mp3", Category: CategoryMusic},
		Sound{ID: "singing-bowl", Title: "Singing Bowl", Icon: "🕉️", File: "singing-bowl.mp3", Category: CategoryMeditation},
		Sound{ID: "bell", Title: "Meditation Bell", Icon: "🧘", File: "meditation-bell.mp3", Category: CategoryMeditation},
	)
}

// DefaultMixerSounds are the sounds offered in the mixer.
var DefaultMixerSounds = []string{"ocean", "rain", "forest", "fire", "ambient"}

// Get returns the sound with the given ID.
func (c *Catalogue) Get(id string) (Sound, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Sound{}, false
	}
	return c.sounds[i], true
}

// Has reports whether the catalogue contains id.
func (c *Catalogue) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns a copy of all sounds in catalogue order.
func (c *Catalogue) All() []Sound {
	out := make([]Sound, len(c.sounds))
	copy(out, c.sounds)
	return out
}

// IDs returns all sound IDs in catalogue order.
func (c *Catalogue) IDs() []string {
	ids := make([]string, len(c.sounds))
	for i, s := range c.sounds {
		ids[i] = s.ID
	}
	return ids
}

// ByCategory returns the sounds in the given category, in catalogue order.
func (c *Catalogue) ByCategory(cat Category) []Sound {
	var out []Sound
	for _, s := range c.sounds {
		if s.Category == cat {
			out = append(out, s)
		}
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (c *Catalogue) Categories() []Category {
	seen := make(map[Category]bool)
	var out []Category
	for _, s := range c.sounds {
		if !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
