// Package ioutils provides file system utilities for calm-sounds.
//
// This package contains functions for:
//   - Atomic file writing (temporary file plus rename)
//   - Filename sanitization
//   - Directory creation
//
// Functions that accept a context.Context check it before the final rename,
// though the write itself is not interruptible.
package ioutils
