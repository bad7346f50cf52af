package playback

import "github.com/joomcode/errorx"

// Driver controls audio output for sounds identified by catalogue ID.
//
// Implementations must treat Play on a playing sound and Pause on a paused
// sound as no-ops.
type Driver interface {
	// Play starts or resumes the sound.
	Play(id string) error

	// Pause halts the sound, keeping its position.
	Pause(id string) error

	// Stop halts the sound and rewinds it to the start.
	Stop(id string) error

	// SetVolume sets the output gain in [0, 1].
	SetVolume(id string, volume float64) error

	// Close releases all audio resources.
	Close() error
}

var (
	// Errors is the namespace for playback errors.
	Errors = errorx.NewNamespace("playback")

	// UnknownSound is returned by drivers asked to control a sound they cannot resolve.
	UnknownSound = Errors.NewType("unknown_sound")
)

// IsUnknownSound reports whether err is an UnknownSound error.
func IsUnknownSound(err error) bool {
	return errorx.IsOfType(err, UnknownSound)
}
