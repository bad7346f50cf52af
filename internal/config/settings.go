package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/mixer"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Settings holds all configuration options.
type Settings struct {
	// Sound files
	SoundsPath   string `json:"sounds_path" yaml:"sounds_path"`
	AssetBaseURL string `json:"asset_base_url" yaml:"asset_base_url"`

	// Mix persistence
	StoreBackend string `json:"store_backend" yaml:"store_backend"` // file, sqlite
	StorePath    string `json:"store_path" yaml:"store_path"`

	// Mixer
	MixerSounds    []string  `json:"mixer_sounds" yaml:"mixer_sounds"`
	DefaultMix     model.Mix `json:"default_mix,omitempty" yaml:"default_mix,omitempty"` // nil: even split
	ToggleVolume   float64   `json:"toggle_volume" yaml:"toggle_volume"`
	AdjustStep     float64   `json:"adjust_step" yaml:"adjust_step"`
	OverflowPolicy string    `json:"overflow_policy" yaml:"overflow_policy"` // reset, scale

	// Audio output
	SampleRate   int `json:"sample_rate" yaml:"sample_rate"`
	BufferMillis int `json:"buffer_millis" yaml:"buffer_millis"`

	// Asset download settings
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads" yaml:"max_concurrent_downloads"`
	DownloadMaxRetries     int     `json:"download_max_retries" yaml:"download_max_retries"`
	DownloadRetryCooldown  float64 `json:"download_retry_cooldown" yaml:"download_retry_cooldown"`
	DownloadRetryExponent  float64 `json:"download_retry_exponent" yaml:"download_retry_exponent"`
	ModifyTags             bool    `json:"modify_tags" yaml:"modify_tags"`

	// Logging
	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file" yaml:"log_file"`
}

// DefaultDir returns the directory holding config, mixes and sounds.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(dir, "calm-sounds")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	dir := DefaultDir()
	sounds := make([]string, len(model.DefaultMixerSounds))
	copy(sounds, model.DefaultMixerSounds)

	return &Settings{
		SoundsPath:   filepath.Join(dir, "sounds"),
		AssetBaseURL: "",

		StoreBackend: StoreFile,
		StorePath:    filepath.Join(dir, "mixes.json"),

		MixerSounds:    sounds,
		DefaultMix:     nil,
		ToggleVolume:   0.5,
		AdjustStep:     0.05,
		OverflowPolicy: mixer.OverflowReset.String(),

		SampleRate:   44100,
		BufferMillis: 100,

		MaxConcurrentDownloads: 4,
		DownloadMaxRetries:     7,
		DownloadRetryCooldown:  0.2,
		DownloadRetryExponent:  4.0,
		ModifyTags:             true,

		LogLevel: "info",
		LogFile:  "",
	}
}

// Load reads settings from a YAML or JSON file, chosen by extension
// (.yaml/.yml is YAML, anything else JSON). A missing file yields the
// defaults. Fields absent from the file keep their default value.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to a YAML or JSON file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Validate checks that settings are usable. All problems are reported
// together.
func (s *Settings) Validate() error {
	var errs []error

	if _, err := mixer.ParseOverflowPolicy(s.OverflowPolicy); err != nil {
		errs = append(errs, err)
	}
	switch s.StoreBackend {
	case StoreFile, StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", s.StoreBackend))
	}

	catalogue := model.DefaultCatalogue()
	seen := make(map[string]bool, len(s.MixerSounds))
	for _, id := range s.MixerSounds {
		if !catalogue.Has(id) {
			errs = append(errs, fmt.Errorf("mixer sound %q is not in the catalogue", id))
		}
		if seen[id] {
			errs = append(errs, fmt.Errorf("mixer sound %q listed twice", id))
		}
		seen[id] = true
	}
	if len(s.MixerSounds) == 0 {
		errs = append(errs, errors.New("mixer_sounds must not be empty"))
	}

	if s.ToggleVolume <= 0 || s.ToggleVolume > 1 {
		errs = append(errs, fmt.Errorf("toggle_volume %v out of range (0, 1]", s.ToggleVolume))
	}
	if s.AdjustStep <= 0 || s.AdjustStep > 1 {
		errs = append(errs, fmt.Errorf("adjust_step %v out of range (0, 1]", s.AdjustStep))
	}
	if s.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate must be positive"))
	}
	if s.MaxConcurrentDownloads < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_downloads must be at least 1"))
	}

	return errors.Join(errs...)
}

// ToNormalizer returns the mixer normalizer described by the settings.
func (s *Settings) ToNormalizer() mixer.Normalizer {
	policy, _ := mixer.ParseOverflowPolicy(s.OverflowPolicy)
	return mixer.Normalizer{Overflow: policy}
}

// Fallback returns the default mix restricted to the mixer sounds. When the
// configured default is empty or silent an even split is used.
func (s *Settings) Fallback() model.Mix {
	mix := make(model.Mix, len(s.MixerSounds))
	for _, id := range s.MixerSounds {
		if w, ok := s.DefaultMix[id]; ok {
			mix[id] = w
		}
	}
	if mix.Total() < 0.01 {
		return mixer.EvenSplit(s.MixerSounds)
	}
	return mix
}

// Buffer returns the speaker buffer length.
func (s *Settings) Buffer() time.Duration {
	if s.BufferMillis <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(s.BufferMillis) * time.Millisecond
}

// RetryDelay returns the wait before retry attempt n (1-based).
func (s *Settings) RetryDelay(attempt int) time.Duration {
	secs := s.DownloadRetryCooldown
	for i := 1; i < attempt; i++ {
		secs *= s.DownloadRetryExponent
	}
	return time.Duration(secs * float64(time.Second))
}
