package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/mixer"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	require.NoError(t, s.Validate())
	assert.Equal(t, model.DefaultMixerSounds, s.MixerSounds)
	assert.InDelta(t, 1.0, s.Fallback().Total(), 1e-9)
	assert.Equal(t, 0.5, s.ToggleVolume)
	assert.Equal(t, StoreFile, s.StoreBackend)
	assert.Equal(t, mixer.OverflowReset, s.ToNormalizer().Overflow)
}

func TestLoad_Missing(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
store_backend: sqlite
store_path: /tmp/mixes.db
mixer_sounds: [rain, fire]
default_mix:
  rain: 0.7
  fire: 0.3
overflow_policy: scale
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, s.StoreBackend)
	assert.Equal(t, []string{"rain", "fire"}, s.MixerSounds)
	assert.Equal(t, model.Mix{"rain": 0.7, "fire": 0.3}, s.DefaultMix)
	assert.Equal(t, mixer.OverflowScale, s.ToNormalizer().Overflow)
	assert.Equal(t, 44100, s.SampleRate, "unset fields keep defaults")
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"adjust_step": 0.1, "log_level": "debug"}`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.1, s.AdjustStep)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"bad yaml", "c.yaml", "mixer_sounds: [", "parse c.yaml"},
		{"bad json", "c.json", "{", "parse c.json"},
		{"unknown policy", "c.yaml", "overflow_policy: clip", "unknown overflow policy"},
		{"unknown sound", "c.yaml", "mixer_sounds: [rain, thunder]", `"thunder" is not in the catalogue`},
		{"unknown backend", "c.yaml", "store_backend: redis", "unknown store backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			s := DefaultSettings()
			s.StoreBackend = StoreSQLite
			s.DefaultMix = model.Mix{"ocean": 0.6, "rain": 0.4}
			require.NoError(t, s.Save(path))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, s, got)
		})
	}
}

func TestFallback(t *testing.T) {
	s := DefaultSettings()
	s.MixerSounds = []string{"ocean", "rain"}
	s.DefaultMix = model.Mix{"ocean": 0.8, "piano": 0.2}
	assert.Equal(t, model.Mix{"ocean": 0.8}, s.Fallback())

	s.DefaultMix = nil
	assert.Equal(t, model.Mix{"ocean": 0.5, "rain": 0.5}, s.Fallback())
}

func TestRetryDelay(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 200*time.Millisecond, s.RetryDelay(1))
	assert.Equal(t, 800*time.Millisecond, s.RetryDelay(2))
	assert.Equal(t, 3200*time.Millisecond, s.RetryDelay(3))
}
