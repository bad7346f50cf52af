package mixer

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func channels(pairs ...any) []model.Channel {
	out := make([]model.Channel, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, model.Channel{ID: pairs[i].(string), Weight: toFloat(pairs[i+1])})
	}
	return out
}

// toFloat accepts untyped integer constants as weights.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		panic(fmt.Sprintf("weight %v has type %T", v, v))
	}
}

func TestAdjust_ProportionalExample(t *testing.T) {
	in := channels("A", 0.5, "B", 0.3, "C", 0.2)

	got, err := Adjust(in, "A", 0.8)
	require.NoError(t, err)

	want := channels("A", 0.8, "B", 0.12, "C", 0.08)
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Adjust mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 1.0, Total(got), 1e-9)
}

func TestAdjust_DoesNotMutateInput(t *testing.T) {
	in := channels("A", 0.5, "B", 0.3, "C", 0.2)
	snapshot := append([]model.Channel(nil), in...)

	_, err := Adjust(in, "B", 0.9)
	require.NoError(t, err)

	assert.Equal(t, snapshot, in)
}

func TestAdjust_Overflow(t *testing.T) {
	tests := []struct {
		name      string
		in        []model.Channel
		id        string
		requested float64
		want      []model.Channel
	}{
		{
			name:      "two channels",
			in:        channels("A", 0.5, "B", 0.5),
			id:        "A",
			requested: 1.2,
			want:      channels("A", 1.0, "B", 0.0),
		},
		{
			name:      "others reset regardless of weight",
			in:        channels("A", 0.1, "B", 0.6, "C", 0.3, "D", 0.0),
			id:        "C",
			requested: 1.5,
			want:      channels("A", 0.0, "B", 0.0, "C", 1.0, "D", 0.0),
		},
		{
			name:      "sole channel",
			in:        channels("A", 0.4),
			id:        "A",
			requested: 7,
			want:      channels("A", 1.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Adjust(tt.in, tt.id, tt.requested)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("Adjust mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAdjust_OverflowScale(t *testing.T) {
	n := Normalizer{Overflow: OverflowScale}

	tests := []struct {
		name      string
		in        []model.Channel
		id        string
		requested float64
		want      []model.Channel
	}{
		{
			name:      "request weighed against the rest",
			in:        channels("A", 0.5, "B", 0.5, "C", 0),
			id:        "A",
			requested: 1.5,
			want:      channels("A", 0.6, "B", 0.4, "C", 0),
		},
		{
			name:      "others keep their proportions",
			in:        channels("A", 0.2, "B", 0.6, "C", 0.2),
			id:        "A",
			requested: 3,
			want:      channels("A", 0.75, "B", 0.19, "C", 0.06),
		},
		{
			name:      "nothing to scale behaves like reset",
			in:        channels("A", 0.2, "B", 0),
			id:        "A",
			requested: 3,
			want:      channels("A", 1, "B", 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Adjust(tt.in, tt.id, tt.requested)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("Adjust mismatch (-want +got):\n%s", diff)
			}

			again, err := n.Adjust(got, tt.id, tt.requested)
			require.NoError(t, err)
			if diff := cmp.Diff(got, again); diff != "" {
				t.Errorf("repeated request moved weight (-first +second):\n%s", diff)
			}
		})
	}
}

func TestAdjust_SilentChannelsDoNotHideDrift(t *testing.T) {
	in := channels("a", 0.3, "b", 0.68, "c", 0, "d", 0, "e", 0, "f", 0, "g", 0, "h", 0)

	got, err := Adjust(in, "a", 0.3)
	require.NoError(t, err)

	want := channels("a", 0.3, "b", 0.7, "c", 0, "d", 0, "e", 0, "f", 0, "g", 0, "h", 0)
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Adjust mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 1.0, Total(got), Tolerance(1))
}

func TestAdjust_RoundedAwayChannel(t *testing.T) {
	// c rounds to zero on the first pass and b rounds down, leaving the
	// remainder short by more than b's half step. b is rebalanced alone.
	in := channels("a", 0.1, "b", 0.89, "c", 0.01)

	got, err := Adjust(in, "a", 0.79371)
	require.NoError(t, err)

	want := channels("a", 0.79371, "b", 0.21, "c", 0)
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Adjust mismatch (-want +got):\n%s", diff)
	}

	again, err := Adjust(got, "a", 0.79371)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestAdjust_SoleActiveChannel(t *testing.T) {
	tests := []struct {
		requested float64
		want      float64
	}{
		{0.4, 0.4},
		{0, 0},
		{-0.3, 0},
		{1, 1},
	}

	for _, tt := range tests {
		in := channels("A", 0.7, "B", 0.0, "C", 0.0)
		got, err := Adjust(in, "A", tt.requested)
		require.NoError(t, err)

		assert.InDelta(t, tt.want, got[0].Weight, 1e-9, "requested %v", tt.requested)
		assert.Zero(t, got[1].Weight)
		assert.Zero(t, got[2].Weight)
	}
}

func TestAdjust_NegativeRequestClamps(t *testing.T) {
	got, err := Adjust(channels("A", 0.4, "B", 0.3, "C", 0.3), "A", -2)
	require.NoError(t, err)

	want := channels("A", 0.0, "B", 0.5, "C", 0.5)
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Adjust mismatch (-want +got):\n%s", diff)
	}
}

func TestAdjust_ReactivatesOnlyTarget(t *testing.T) {
	got, err := Adjust(channels("A", 0.6, "B", 0.4, "C", 0.0), "C", 0.5)
	require.NoError(t, err)

	want := channels("A", 0.3, "B", 0.2, "C", 0.5)
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Adjust mismatch (-want +got):\n%s", diff)
	}
}

func TestAdjust_InvalidInput(t *testing.T) {
	in := channels("A", 0.5, "B", 0.5)

	_, err := Adjust(in, "nonexistent", 0.5)
	require.Error(t, err)
	assert.True(t, IsInvalidChannel(err), "got %v", err)
	assert.False(t, IsInvalidValue(err))

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = Adjust(in, "A", v)
		require.Error(t, err)
		assert.True(t, IsInvalidValue(err), "value %v: got %v", v, err)
	}

	// the value is checked before the channel
	_, err = Adjust(in, "nonexistent", math.NaN())
	assert.True(t, IsInvalidValue(err))
}

func TestAdjust_NotCommutative(t *testing.T) {
	in := channels("A", 0.5, "B", 0.3, "C", 0.2)

	ab, err := Adjust(in, "A", 0.8)
	require.NoError(t, err)
	ab, err = Adjust(ab, "B", 0.5)
	require.NoError(t, err)

	ba, err := Adjust(in, "B", 0.5)
	require.NoError(t, err)
	ba, err = Adjust(ba, "A", 0.8)
	require.NoError(t, err)

	// last write wins for the channel written last
	assert.InDelta(t, 0.5, ab[1].Weight, 1e-9)
	assert.InDelta(t, 0.8, ba[0].Weight, 1e-9)
	assert.False(t, cmp.Equal(ab, ba, approx), "expected history-dependent results, both were %v", ab)
}

// randomChannels returns n channels where roughly a third are silent.
func randomChannels(r *rand.Rand, n int) []model.Channel {
	out := make([]model.Channel, n)
	for i := range out {
		w := 0.0
		if r.Intn(3) > 0 {
			w = round2(r.Float64())
		}
		out[i] = model.Channel{ID: string(rune('a' + i)), Weight: w}
	}
	return out
}

func otherActive(in []model.Channel, id string) int {
	var n int
	for _, c := range in {
		if c.ID != id && c.Weight > 0 {
			n++
		}
	}
	return n
}

func TestAdjust_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for iter := 0; iter < 2000; iter++ {
		n := 2 + r.Intn(7)
		in := randomChannels(r, n)
		target := in[r.Intn(n)].ID
		v := r.Float64()

		got, err := Adjust(in, target, v)
		require.NoError(t, err)
		require.Len(t, got, n)

		active := otherActive(in, target)

		// conservation
		if active > 0 {
			assert.InDelta(t, 1.0, Total(got), Tolerance(active), "in=%v target=%s v=%v", in, target, v)
		}

		for i, c := range got {
			assert.Equal(t, in[i].ID, c.ID, "order must be stable")
			assert.GreaterOrEqual(t, c.Weight, 0.0)
			assert.LessOrEqual(t, c.Weight, 1.0)

			// silent channels stay silent
			if c.ID != target && in[i].Weight == 0 {
				assert.Zero(t, c.Weight, "in=%v target=%s v=%v", in, target, v)
			}
		}

		// idempotence
		again, err := Adjust(got, target, v)
		require.NoError(t, err)
		if diff := cmp.Diff(got, again); diff != "" {
			t.Fatalf("second Adjust changed state (-first +second):\n%s\nin=%v target=%s v=%v", diff, in, target, v)
		}
	}
}

func TestAdjust_OverflowProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for iter := 0; iter < 500; iter++ {
		n := 1 + r.Intn(8)
		in := randomChannels(r, n)
		target := in[r.Intn(n)].ID
		v := 1 + r.Float64()*5 + 1e-6

		got, err := Adjust(in, target, v)
		require.NoError(t, err)

		for _, c := range got {
			if c.ID == target {
				assert.Equal(t, 1.0, c.Weight)
			} else {
				assert.Zero(t, c.Weight)
			}
		}

		again, err := Adjust(got, target, v)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}

func TestAdjust_OverflowScaleProperties(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	norm := Normalizer{Overflow: OverflowScale}

	for iter := 0; iter < 500; iter++ {
		n := 1 + r.Intn(8)
		in := randomChannels(r, n)
		target := in[r.Intn(n)].ID
		v := 1 + r.Float64()*5 + 1e-6

		got, err := norm.Adjust(in, target, v)
		require.NoError(t, err)

		if active := otherActive(in, target); active > 0 {
			assert.InDelta(t, 1.0, Total(got), Tolerance(active), "in=%v target=%s v=%v", in, target, v)
		}
		for i, c := range got {
			if c.ID != target && in[i].Weight == 0 {
				assert.Zero(t, c.Weight, "in=%v target=%s v=%v", in, target, v)
			}
		}

		again, err := norm.Adjust(got, target, v)
		require.NoError(t, err)
		if diff := cmp.Diff(got, again); diff != "" {
			t.Fatalf("second Adjust changed state (-first +second):\n%s\nin=%v target=%s v=%v", diff, in, target, v)
		}
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    OverflowPolicy
		wantErr bool
	}{
		{"", OverflowReset, false},
		{"reset", OverflowReset, false},
		{"scale", OverflowScale, false},
		{"clip", OverflowReset, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOverflowPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) OverflowPolicy {
	t.Helper()
	p, err := ParseOverflowPolicy(s)
	require.NoError(t, err)
	return p
}
