package playback

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

// track is one looping sound routed through the shared mixer.
type track struct {
	source beep.StreamSeekCloser
	ctrl   *beep.Ctrl
	volume *effects.Volume
}

// BeepDriver plays catalogue sounds through the system speaker. Every sound
// loops forever once started and is mixed with the others in a single
// beep.Mixer, so any number of sounds can play at once.
//
// Sound files are decoded lazily on first use from Dir. MP3 and WAV are
// supported.
type BeepDriver struct {
	catalogue  *model.Catalogue
	dir        string
	sampleRate beep.SampleRate
	logger     *zap.Logger

	mu     sync.Mutex
	mixer  *beep.Mixer
	tracks map[string]*track
}

// NewBeepDriver initializes the speaker and returns a driver reading sound
// files from dir.
//
// Example:
//
//	d, err := playback.NewBeepDriver(model.DefaultCatalogue(), "sounds", 44100, 100*time.Millisecond, logger)
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
func NewBeepDriver(catalogue *model.Catalogue, dir string, sampleRate int, buffer time.Duration, logger *zap.Logger) (*BeepDriver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}

	d := &BeepDriver{
		catalogue:  catalogue,
		dir:        dir,
		sampleRate: sr,
		logger:     logger,
		mixer:      &beep.Mixer{},
		tracks:     make(map[string]*track),
	}
	speaker.Play(d.mixer)
	return d, nil
}

// load returns the track for id, decoding it on first use. Caller holds d.mu.
func (d *BeepDriver) load(id string) (*track, error) {
	if t, ok := d.tracks[id]; ok {
		return t, nil
	}
	sound, ok := d.catalogue.Get(id)
	if !ok {
		return nil, UnknownSound.New("no catalogue entry for %q", id)
	}

	path := filepath.Join(d.dir, sound.File)
	source, format, err := decode(path)
	if err != nil {
		return nil, err
	}

	var stream beep.Streamer = beep.Loop(-1, source)
	if format.SampleRate != d.sampleRate {
		stream = beep.Resample(4, format.SampleRate, d.sampleRate, stream)
	}

	ctrl := &beep.Ctrl{Streamer: stream, Paused: true}
	volume := &effects.Volume{Streamer: ctrl, Base: 2, Silent: true}
	t := &track{source: source, ctrl: ctrl, volume: volume}

	speaker.Lock()
	d.mixer.Add(volume)
	speaker.Unlock()

	d.tracks[id] = t
	d.logger.Debug("sound loaded",
		zap.String("sound", id),
		zap.String("path", path),
		zap.Int("sample_rate", int(format.SampleRate)))
	return t, nil
}

// decode opens path and picks a decoder from its extension.
func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open sound: %w", err)
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported sound format: %s", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return s, format, nil
}

func (d *BeepDriver) Play(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.load(id)
	if err != nil {
		return err
	}
	speaker.Lock()
	t.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (d *BeepDriver) Pause(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tracks[id]
	if !ok {
		return nil
	}
	speaker.Lock()
	t.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

func (d *BeepDriver) Stop(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tracks[id]
	if !ok {
		return nil
	}
	speaker.Lock()
	defer speaker.Unlock()
	t.ctrl.Paused = true
	return t.source.Seek(0)
}

func (d *BeepDriver) SetVolume(id string, volume float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.load(id)
	if err != nil {
		return err
	}
	speaker.Lock()
	defer speaker.Unlock()
	if volume <= 0 {
		t.volume.Silent = true
		return nil
	}
	t.volume.Silent = false
	t.volume.Volume = math.Log2(math.Min(volume, 1))
	return nil
}

// Close stops output and releases every decoded file.
func (d *BeepDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	speaker.Clear()
	var firstErr error
	for id, t := range d.tracks {
		if err := t.source.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", id, err)
		}
	}
	d.tracks = make(map[string]*track)
	speaker.Close()
	return firstErr
}
