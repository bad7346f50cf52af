// Package playback turns mixer state changes into audio output.
//
// The mixer works on pure channel weights. Reconcile compares two of those
// states and returns the Commands needed to move the audio from one to the
// other, and Apply sends them to a Driver:
//
//	before, after, err := m.Set("rain", 0.6)
//	if err != nil {
//	    return err
//	}
//	if err := playback.Apply(driver, playback.Reconcile(before, after)); err != nil {
//	    log.Warn("playback", zap.Error(err))
//	}
//
// BeepDriver plays real sound files through the speaker. NopDriver only
// records what it was asked to do.
package playback
