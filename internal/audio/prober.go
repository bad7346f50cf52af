package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bogem/id3v2"
	"github.com/go-audio/wav"
)

// ErrUnsupportedFormat is returned for files that are neither MP3 nor WAV.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Info describes a sound file on disk.
type Info struct {
	Path   string
	Format string // "mp3" or "wav"
	Size   int64

	// Title is the ID3 title of an MP3 file, if tagged.
	Title string

	// Duration, SampleRate and Channels are known for WAV files only.
	Duration   time.Duration
	SampleRate int
	Channels   int
}

// Prober reads metadata from sound files without decoding the audio.
type Prober struct{}

// NewProber creates a Prober.
func NewProber() *Prober {
	return &Prober{}
}

// Probe inspects the file at path.
//
// Example:
//
//	info, err := audio.NewProber().Probe("/sounds/rain.mp3")
//	if err == nil {
//	    fmt.Println(info.Title) // "Rain"
//	}
func (p *Prober) Probe(path string) (*Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	info := &Info{Path: path, Size: st.Size()}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		info.Format = "mp3"
		err = probeMP3(path, info)
	case ".wav":
		info.Format = "wav"
		err = probeWAV(path, info)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", filepath.Base(path), err)
	}
	return info, nil
}

func probeMP3(path string, info *Info) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Title"}})
	if err != nil {
		return err
	}
	defer tag.Close()
	info.Title = tag.Title()
	return nil
}

func probeWAV(path string, info *Info) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return errors.New("invalid WAV file")
	}
	dur, err := d.Duration()
	if err != nil {
		return err
	}
	info.Duration = dur
	info.SampleRate = int(d.SampleRate)
	info.Channels = int(d.NumChans)
	return nil
}
