package mixer

import (
	"math"
	"sync"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
	"github.com/google/uuid"
)

// Mixer holds one mixer instance's channel state and serializes changes to
// it. Each Set depends on the full prior state, so concurrent callers of
// the same instance must not interleave.
type Mixer struct {
	// ID identifies the instance in logs.
	ID string

	normalizer Normalizer

	mu       sync.Mutex
	channels []model.Channel
}

// New creates a Mixer over channels. Channel IDs must be unique and every
// weight must be a finite number in [0, 1].
func New(channels []model.Channel, n Normalizer) (*Mixer, error) {
	seen := make(map[string]bool, len(channels))
	for _, c := range channels {
		if seen[c.ID] {
			return nil, InvalidChannel.New("duplicate channel %q", c.ID)
		}
		seen[c.ID] = true
		if math.IsNaN(c.Weight) || c.Weight < 0 || c.Weight > TargetTotal {
			return nil, InvalidValue.New("channel %q has weight %v outside [0, 1]", c.ID, c.Weight)
		}
	}

	state := make([]model.Channel, len(channels))
	copy(state, channels)

	return &Mixer{
		ID:         uuid.NewString(),
		normalizer: n,
		channels:   state,
	}, nil
}

// Set moves channel id to value and rebalances the rest. It returns the
// state before and after the change so callers can reconcile playback.
// On error the state is left untouched.
func (m *Mixer) Set(id string, value float64) (before, after []model.Channel, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set(id, value)
}

func (m *Mixer) set(id string, value float64) (before, after []model.Channel, err error) {
	next, err := m.normalizer.Adjust(m.channels, id, value)
	if err != nil {
		return nil, nil, err
	}

	before = m.channels
	m.channels = next
	return clone(before), clone(next), nil
}

// Settle re-applies the first channel's own weight, which rescales a
// seeded state that does not sum to the target. It is a no-op on an empty
// or already balanced mixer.
func (m *Mixer) Settle() (before, after []model.Channel, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.channels) == 0 {
		return nil, nil, nil
	}
	first := m.channels[0]
	return m.set(first.ID, first.Weight)
}

// Reset replaces the whole state, e.g. after stop-all or loading a mix.
// The same rules as New apply.
func (m *Mixer) Reset(channels []model.Channel) error {
	fresh, err := New(channels, m.normalizer)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.channels = fresh.channels
	m.mu.Unlock()
	return nil
}

// Channels returns a copy of the current state.
func (m *Mixer) Channels() []model.Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.channels)
}

// Weight returns the weight of channel id.
func (m *Mixer) Weight(id string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := indexOf(m.channels, id); i >= 0 {
		return m.channels[i].Weight, true
	}
	return 0, false
}

// Total returns the current sum of weights, rounded to whole percent.
func (m *Mixer) Total() float64 {
	return round2(Total(m.Channels()))
}

// Mix returns the current state as a Mix.
func (m *Mixer) Mix() model.Mix {
	return model.MixFromChannels(m.Channels())
}

func clone(channels []model.Channel) []model.Channel {
	out := make([]model.Channel, len(channels))
	copy(out, channels)
	return out
}
