package session

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/joomcode/errorx"
	"go.uber.org/zap"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/config"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/mixer"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/playback"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/store"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/timer"
)

var (
	Errors = errorx.NewNamespace("session")

	// UnknownSound is raised for IDs missing from the catalogue.
	UnknownSound = Errors.NewType("unknown_sound")

	// MixerClosed is raised by mixer operations when no mixer is open.
	MixerClosed = Errors.NewType("mixer_closed")
)

// Options configures a Session. Settings, Driver and Store are required.
type Options struct {
	Settings  *config.Settings
	Catalogue *model.Catalogue // defaults to model.DefaultCatalogue()
	Driver    playback.Driver
	Store     store.Store
	Logger    *zap.Logger
	Clock     timer.Clock // defaults to the wall clock
}

// Session is the state of one sound page: a volume level and a play flag
// per catalogue sound, the optional mixer, and the sleep timer.
//
// Levels are what the grid sliders show. A sound is audible when it is
// playing and its level is above zero. All methods are safe for concurrent
// use; driver calls happen under the session lock so the audio never runs
// ahead of the state.
//
// Driver failures are logged and do not undo the state change, matching a
// page whose sliders move even when the browser refuses to play.
type Session struct {
	ID string

	settings   *config.Settings
	catalogue  *model.Catalogue
	normalizer mixer.Normalizer
	driver     playback.Driver
	store      store.Store
	logger     *zap.Logger
	timer      *timer.SleepTimer

	mu      sync.Mutex
	levels  map[string]float64
	playing map[string]bool
	mixer   *mixer.Mixer
}

// New creates a Session with every sound silent and paused.
func New(opts Options) (*Session, error) {
	if opts.Settings == nil || opts.Driver == nil || opts.Store == nil {
		return nil, errorx.IllegalArgument.New("session needs settings, driver and store")
	}
	if opts.Catalogue == nil {
		opts.Catalogue = model.DefaultCatalogue()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	for _, id := range opts.Settings.MixerSounds {
		if !opts.Catalogue.Has(id) {
			return nil, UnknownSound.New("mixer sound %q is not in the catalogue", id)
		}
	}

	s := &Session{
		ID:         uuid.NewString(),
		settings:   opts.Settings,
		catalogue:  opts.Catalogue,
		normalizer: opts.Settings.ToNormalizer(),
		driver:     opts.Driver,
		store:      opts.Store,
		levels:     make(map[string]float64),
		playing:    make(map[string]bool),
	}
	s.logger = opts.Logger.With(zap.String("session", s.ID))

	if opts.Clock != nil {
		s.timer = timer.NewWithClock(opts.Clock, s.expire)
	} else {
		s.timer = timer.New(s.expire)
	}
	return s, nil
}

// expire stops everything when countdown is still the timer's finished
// countdown. A stop-all or a new timer set since expiry wins.
func (s *Session) expire(countdown uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.timer.Finished(countdown) {
		s.logger.Debug("stale sleep timer expiry ignored", zap.Uint64("countdown", countdown))
		return
	}
	s.logger.Info("sleep timer finished")
	s.stopAllLocked(false)
}

// Catalogue returns the sounds this session controls.
func (s *Session) Catalogue() *model.Catalogue {
	return s.catalogue
}

func (s *Session) checkSound(id string) error {
	if !s.catalogue.Has(id) {
		return UnknownSound.New("unknown sound %q", id)
	}
	return nil
}

func checkValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return mixer.InvalidValue.New("volume must be a finite number, got %v", v)
	}
	return nil
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Level returns the slider level of id.
func (s *Session) Level(id string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[id]
}

// Playing reports whether id is playing (not paused).
func (s *Session) Playing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing[id]
}

// Levels returns a copy of all non-zero levels.
func (s *Session) Levels() model.Mix {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(model.Mix, len(s.levels))
	for id, v := range s.levels {
		if v > 0 {
			out[id] = v
		}
	}
	return out
}

// audibleLocked lists the sounds that are playing with a level above zero,
// in catalogue order.
func (s *Session) audibleLocked() []string {
	var ids []string
	for _, id := range s.catalogue.IDs() {
		if s.playing[id] && s.levels[id] > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetVolume moves the grid slider of id. Raising a silent sound starts it;
// setting zero pauses it.
func (s *Session) SetVolume(id string, v float64) error {
	if err := s.checkSound(id); err != nil {
		return err
	}
	if err := checkValue(v); err != nil {
		return err
	}
	v = clamp(v)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.levels[id] = v
	s.call("volume", id, s.driver.SetVolume(id, v))
	switch {
	case v > 0 && !s.playing[id]:
		s.playing[id] = true
		s.call("play", id, s.driver.Play(id))
	case v == 0 && s.playing[id]:
		s.playing[id] = false
		s.call("pause", id, s.driver.Pause(id))
	}

	s.logger.Debug("volume set", zap.String("sound", id), zap.Float64("volume", v))
	return nil
}

// Toggle plays a paused or silent sound, giving it the default toggle
// volume if its level is zero, and pauses it otherwise.
func (s *Session) Toggle(id string) error {
	if err := s.checkSound(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing[id] || s.levels[id] == 0 {
		if s.levels[id] == 0 {
			s.levels[id] = s.settings.ToggleVolume
			s.call("volume", id, s.driver.SetVolume(id, s.levels[id]))
		}
		s.playing[id] = true
		s.call("play", id, s.driver.Play(id))
		s.logger.Info("sound started", zap.String("sound", id), zap.Float64("volume", s.levels[id]))
		return nil
	}

	s.playing[id] = false
	s.call("pause", id, s.driver.Pause(id))
	s.logger.Info("sound paused", zap.String("sound", id))
	return nil
}

// StopAll stops and rewinds every sound, zeroes every level and mixer
// weight, and cancels the sleep timer.
func (s *Session) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAllLocked(true)
}

func (s *Session) stopAllLocked(cancelTimer bool) {
	for _, id := range s.catalogue.IDs() {
		s.call("stop", id, s.driver.Stop(id))
		s.levels[id] = 0
		s.playing[id] = false
	}
	if s.mixer != nil {
		zero := s.mixer.Channels()
		for i := range zero {
			zero[i].Weight = 0
		}
		// Zero weights always pass validation.
		_ = s.mixer.Reset(zero)
	}
	if cancelTimer {
		s.timer.Cancel()
	}
	s.logger.Info("all sounds stopped")
}

// ToggleAll pauses every sound with a level above zero if any of them is
// audible, and plays them all otherwise.
func (s *Session) ToggleAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	pause := len(s.audibleLocked()) > 0
	for _, id := range s.catalogue.IDs() {
		if s.levels[id] <= 0 {
			continue
		}
		if pause {
			s.playing[id] = false
			s.call("pause", id, s.driver.Pause(id))
		} else {
			s.playing[id] = true
			s.call("play", id, s.driver.Play(id))
		}
	}
	s.logger.Info("toggled all", zap.Bool("paused", pause))
}

// SetSleepTimer stops everything after minutes. Zero or less disables it.
func (s *Session) SetSleepTimer(minutes int) {
	s.mu.Lock()
	s.timer.SetMinutes(minutes)
	s.mu.Unlock()
	if minutes > 0 {
		s.logger.Info("sleep timer set", zap.Int("minutes", minutes))
	} else {
		s.logger.Info("sleep timer disabled")
	}
}

// Timer exposes the sleep timer for display.
func (s *Session) Timer() *timer.SleepTimer {
	return s.timer
}

// Close cancels the timer and releases the audio driver.
func (s *Session) Close() error {
	s.timer.Cancel()
	return s.driver.Close()
}

// call logs a failed driver call.
func (s *Session) call(op, id string, err error) {
	if err != nil {
		s.logger.Warn("playback failed", zap.String("op", op), zap.String("sound", id), zap.Error(err))
	}
}

// sortedIDs returns the keys of m, sorted.
func sortedIDs(m model.Mix) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// logMix renders weights as zap fields in a stable order.
func logMix(channels []model.Channel) zap.Field {
	m := model.MixFromChannels(channels)
	fields := make([]string, 0, len(m))
	for _, id := range sortedIDs(m) {
		fields = append(fields, id+"="+formatPercent(m[id]))
	}
	return zap.Strings("weights", fields)
}

// SaveMix stores the mixer weights under name, or under the default name
// when name is empty. With the mixer closed the grid levels of the mixer
// sounds are saved instead.
func (s *Session) SaveMix(ctx context.Context, name string) (model.Mix, error) {
	if name == "" {
		name = store.DefaultMixName
	}

	s.mu.Lock()
	var mix model.Mix
	if s.mixer != nil {
		mix = s.mixer.Mix()
	} else {
		mix = make(model.Mix, len(s.settings.MixerSounds))
		for _, id := range s.settings.MixerSounds {
			mix[id] = s.levels[id]
		}
	}
	s.mu.Unlock()

	if err := s.store.SaveMix(ctx, name, mix); err != nil {
		return nil, errorx.Decorate(err, "save mix %q", name)
	}
	s.logger.Info("mix saved", zap.String("name", name))
	return mix, nil
}

// Snapshot is a read-only view of the session for display.
type Snapshot struct {
	Levels     model.Mix
	Playing    map[string]bool
	MixerOpen  bool
	Mixer      []model.Channel
	MixerTotal float64
	Status     Status
}

// Snapshot captures the whole session state at once.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Levels:  make(model.Mix, len(s.levels)),
		Playing: make(map[string]bool, len(s.playing)),
		Status:  s.statusLocked(),
	}
	for id, v := range s.levels {
		snap.Levels[id] = v
	}
	for id, p := range s.playing {
		snap.Playing[id] = p
	}
	if s.mixer != nil {
		snap.MixerOpen = true
		snap.Mixer = s.mixer.Channels()
		snap.MixerTotal = s.mixer.Total()
	}
	return snap
}
