package mixer

import "github.com/joomcode/errorx"

var (
	// Errors is the namespace for all mixer errors.
	Errors = errorx.NewNamespace("mixer")

	// InvalidChannel is returned when a referenced channel ID is not part of the mixer.
	InvalidChannel = Errors.NewType("invalid_channel")

	// InvalidValue is returned when a requested weight is not a finite number,
	// or when an initial channel set holds weights outside [0, 1].
	InvalidValue = Errors.NewType("invalid_value")
)

// IsInvalidChannel reports whether err is an InvalidChannel error.
func IsInvalidChannel(err error) bool {
	return errorx.IsOfType(err, InvalidChannel)
}

// IsInvalidValue reports whether err is an InvalidValue error.
func IsInvalidValue(err error) bool {
	return errorx.IsOfType(err, InvalidValue)
}
