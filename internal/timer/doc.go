// Package timer provides the sleep timer that stops every sound after a
// chosen number of minutes.
package timer
