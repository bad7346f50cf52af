package audio

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

// AlbumTitle is written to the album frame of every fetched sound.
const AlbumTitle = "Calming Sounds"

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the catalogue.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags: true,
//	    Title:      TagModify,      // "Ocean Waves"
//	    Album:      TagModify,      // "Calming Sounds"
//	    Genre:      TagModify,      // "Nature"
//	    Comments:   TagDoNotModify, // Keep whatever the asset shipped with
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, nothing is modified.
	ModifyTags bool

	// Title controls the TIT2 (Title) frame.
	Title TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// Genre controls the TCON (Content type) frame.
	Genre TagEditAction

	// Comments controls the COMM (Comments) frame.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
//
// Title, album and genre are set from the catalogue; comments are cleared.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags: true,
		Title:      TagModify,
		Album:      TagModify,
		Genre:      TagModify,
		Comments:   TagEmpty,
	}
}

// Tagger writes ID3 tags to fetched MP3 sound files so that other players
// show the catalogue title instead of whatever the asset shipped with.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	sound, _ := catalogue.Get("rain")
//	if err := tagger.SaveTags("/sounds/rain.mp3", sound); err != nil {
//	    log.Printf("Failed to tag %s: %v", sound.File, err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags describing sound to the MP3 file at path.
// Files that are not MP3 are left alone.
func (t *Tagger) SaveTags(path string, sound model.Sound) error {
	if !t.config.ModifyTags || !strings.EqualFold(filepath.Ext(path), ".mp3") {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	t.updateStringTags(tag, sound)
	return tag.Save()
}

func (t *Tagger) updateStringTags(tag *id3v2.Tag, sound model.Sound) {
	switch t.config.Title {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(sound.Title)
	}

	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(AlbumTitle)
	}

	switch t.config.Genre {
	case TagEmpty:
		tag.SetGenre("")
	case TagModify:
		tag.SetGenre(genreFor(sound.Category))
	}

	if t.config.Comments == TagEmpty {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}
}

func genreFor(c model.Category) string {
	if c == "" {
		return ""
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}
