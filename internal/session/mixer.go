package session

import (
	"context"

	"github.com/joomcode/errorx"
	"go.uber.org/zap"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/mixer"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/playback"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/store"
)

// OpenMixer creates the mixer over the configured mixer sounds and brings
// playback in line with it.
//
// Each channel is seeded from the sound's current level, else from the
// saved default mix, else zero; a near-silent seed falls back to the
// configured default mix. The seeded state is then settled so that it sums
// to 100%. A saved mix that cannot be read is logged and ignored.
func (s *Session) OpenMixer(ctx context.Context) ([]model.Channel, error) {
	saved, _, err := s.store.LoadMix(ctx, store.DefaultMixName)
	if err != nil {
		s.logger.Warn("ignoring saved mix", zap.Error(err))
		saved = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	playing := make(model.Mix, len(s.levels))
	for id, v := range s.levels {
		if v > 0 {
			playing[id] = v
		}
	}
	return s.openLocked(mixer.Seed(s.settings.MixerSounds, playing, saved, s.settings.Fallback()))
}

// PlayMix opens the mixer seeded only from the mix saved under name,
// ignoring what currently plays. It fails if there is no such mix.
func (s *Session) PlayMix(ctx context.Context, name string) ([]model.Channel, error) {
	if name == "" {
		name = store.DefaultMixName
	}
	saved, ok, err := s.store.LoadMix(ctx, name)
	if err != nil {
		return nil, errorx.Decorate(err, "load mix %q", name)
	}
	if !ok {
		return nil, errorx.DataUnavailable.New("no saved mix named %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked(mixer.Seed(s.settings.MixerSounds, nil, saved, s.settings.Fallback()))
}

func (s *Session) openLocked(seed []model.Channel) ([]model.Channel, error) {
	m, err := mixer.New(seed, s.normalizer)
	if err != nil {
		return nil, errorx.Decorate(err, "open mixer")
	}
	if _, _, err := m.Settle(); err != nil {
		return nil, errorx.Decorate(err, "settle mixer")
	}

	s.mixer = m
	after := m.Channels()
	s.applyLocked(after)

	s.logger.Info("mixer opened", zap.String("mixer", m.ID), logMix(after))
	return after, nil
}

// AdjustMixer moves mixer channel id to v and rebalances the others. The
// grid levels of the mixer sounds follow the new weights.
func (s *Session) AdjustMixer(id string, v float64) ([]model.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mixer == nil {
		return nil, MixerClosed.New("open the mixer before adjusting it")
	}
	_, after, err := s.mixer.Set(id, v)
	if err != nil {
		return nil, err
	}
	s.applyLocked(after)

	s.logger.Debug("mixer adjusted",
		zap.String("mixer", s.mixer.ID),
		zap.String("sound", id),
		zap.Float64("requested", v),
		logMix(after))
	return after, nil
}

// applyLocked moves the mixer sounds to the given weights. Reconciling
// from the audible state means a paused sound given weight starts again.
func (s *Session) applyLocked(after []model.Channel) {
	before := make([]model.Channel, len(after))
	for i, c := range after {
		w := 0.0
		if s.playing[c.ID] {
			w = s.levels[c.ID]
		}
		before[i] = model.Channel{ID: c.ID, Weight: w}
	}

	if err := playback.Apply(s.driver, playback.Reconcile(before, after)); err != nil {
		s.logger.Warn("playback failed", zap.Error(err))
	}
	for _, c := range after {
		s.levels[c.ID] = c.Weight
		s.playing[c.ID] = c.Weight > 0
	}
}

// CloseMixer discards the mixer. Sounds keep playing at their levels.
func (s *Session) CloseMixer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mixer != nil {
		s.logger.Debug("mixer closed", zap.String("mixer", s.mixer.ID))
	}
	s.mixer = nil
}

// MixerChannels returns the open mixer's weights.
func (s *Session) MixerChannels() ([]model.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mixer == nil {
		return nil, false
	}
	return s.mixer.Channels(), true
}
