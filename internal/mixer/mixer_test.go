package mixer

import (
	"sync"
	"testing"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		in        []model.Channel
		wantValue bool
		wantChan  bool
	}{
		{name: "valid", in: channels("a", 0.5, "b", 0.5)},
		{name: "empty", in: nil},
		{name: "duplicate", in: channels("a", 0.5, "a", 0.5), wantChan: true},
		{name: "negative", in: channels("a", -0.1), wantValue: true},
		{name: "above one", in: channels("a", 1.01), wantValue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.in, Normalizer{})
			switch {
			case tt.wantChan:
				assert.True(t, IsInvalidChannel(err), "got %v", err)
			case tt.wantValue:
				assert.True(t, IsInvalidValue(err), "got %v", err)
			default:
				require.NoError(t, err)
				assert.NotEmpty(t, m.ID)
			}
		})
	}
}

func TestMixer_Set(t *testing.T) {
	m, err := New(channels("A", 0.5, "B", 0.3, "C", 0.2), Normalizer{})
	require.NoError(t, err)

	before, after, err := m.Set("A", 0.8)
	require.NoError(t, err)

	if diff := cmp.Diff(channels("A", 0.5, "B", 0.3, "C", 0.2), before, approx); diff != "" {
		t.Errorf("before mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(channels("A", 0.8, "B", 0.12, "C", 0.08), after, approx); diff != "" {
		t.Errorf("after mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, after, m.Channels())
	assert.InDelta(t, 1.0, m.Total(), 1e-9)

	w, ok := m.Weight("B")
	assert.True(t, ok)
	assert.InDelta(t, 0.12, w, 1e-9)

	_, ok = m.Weight("Z")
	assert.False(t, ok)
}

func TestMixer_SetErrorKeepsState(t *testing.T) {
	m, err := New(channels("A", 0.5, "B", 0.5), Normalizer{})
	require.NoError(t, err)

	_, _, err = m.Set("Z", 0.2)
	assert.True(t, IsInvalidChannel(err))

	assert.Equal(t, channels("A", 0.5, "B", 0.5), m.Channels())
}

func TestMixer_ChannelsIsACopy(t *testing.T) {
	m, err := New(channels("A", 1.0), Normalizer{})
	require.NoError(t, err)

	got := m.Channels()
	got[0].Weight = 0

	w, _ := m.Weight("A")
	assert.Equal(t, 1.0, w)
}

func TestMixer_Settle(t *testing.T) {
	tests := []struct {
		name string
		in   []model.Channel
		want []model.Channel
	}{
		{
			name: "balanced default is untouched",
			in:   channels("a", 0.2, "b", 0.2, "c", 0.2, "d", 0.2, "e", 0.2),
			want: channels("a", 0.2, "b", 0.2, "c", 0.2, "d", 0.2, "e", 0.2),
		},
		{
			name: "thirds within rounding are untouched",
			in:   channels("a", 0.33, "b", 0.33, "c", 0.33),
			want: channels("a", 0.33, "b", 0.33, "c", 0.33),
		},
		{
			name: "oversubscribed saved mix is rescaled",
			in:   channels("a", 0.5, "b", 0.5, "c", 0.5),
			want: channels("a", 0.5, "b", 0.25, "c", 0.25),
		},
		{
			name: "silent first channel hands everything to the rest",
			in:   channels("a", 0.0, "b", 0.3, "c", 0.4),
			want: channels("a", 0.0, "b", 0.43, "c", 0.57),
		},
		{
			name: "drift is rebalanced despite silent channels",
			in:   channels("a", 0.3, "b", 0.68, "c", 0.0, "d", 0.0, "e", 0.0, "f", 0.0),
			want: channels("a", 0.3, "b", 0.7, "c", 0.0, "d", 0.0, "e", 0.0, "f", 0.0),
		},
		{
			name: "all silent stays silent",
			in:   channels("a", 0.0, "b", 0.0),
			want: channels("a", 0.0, "b", 0.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.in, Normalizer{})
			require.NoError(t, err)

			_, _, err = m.Settle()
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, m.Channels(), approx); diff != "" {
				t.Errorf("Settle mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMixer_Reset(t *testing.T) {
	m, err := New(channels("A", 0.5, "B", 0.5), Normalizer{})
	require.NoError(t, err)

	require.NoError(t, m.Reset(channels("A", 0.0, "B", 0.0)))
	assert.Zero(t, m.Total())

	assert.Error(t, m.Reset(channels("A", 2.0)))
	assert.Len(t, m.Channels(), 2, "failed reset must keep previous state")
}

func TestMixer_ConcurrentSet(t *testing.T) {
	m, err := New(channels("a", 0.25, "b", 0.25, "c", 0.25, "d", 0.25), Normalizer{})
	require.NoError(t, err)

	ids := []string{"a", "b", "c", "d"}
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := m.Set(ids[i%len(ids)], float64(i%10)/10)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got := m.Channels()
	require.Len(t, got, 4)
	for _, c := range got {
		assert.GreaterOrEqual(t, c.Weight, 0.0)
		assert.LessOrEqual(t, c.Weight, 1.0)
	}
}
