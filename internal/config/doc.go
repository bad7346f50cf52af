// Package config provides configuration management for calm-sounds.
//
// This package handles:
//   - Loading and saving settings from YAML or JSON files
//   - Default configuration values
//   - Validation and conversion to the mixer normalizer
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Sounds in ~/.config/calm-sounds/sounds
//	// Mixes in ~/.config/calm-sounds/mixes.json
//	// Five-channel mixer split evenly
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// The file format follows the extension: .yaml and .yml are YAML, anything
// else is JSON.
//
// # Saving Settings
//
//	settings.StoreBackend = config.StoreSQLite
//	settings.StorePath = "/path/to/mixes.db"
//	err := settings.Save("/path/to/config.yaml")
//
// # Configuration Options
//
// Settings includes options for:
//   - Sound file location and asset download URL
//   - Mix storage backend
//   - Mixer channels, default mix, adjust step and overflow behaviour
//   - Audio output format
//   - Download retry behavior
//   - Logging
package config
