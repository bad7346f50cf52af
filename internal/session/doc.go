// Package session implements the calming sounds page: independent volume
// sliders for every sound, the proportional mixer over a subset of them,
// stop-all and toggle-all, the sleep timer and the floating player status.
//
// # Basic Usage
//
//	sess, err := session.New(session.Options{
//	    Settings: settings,
//	    Driver:   driver,
//	    Store:    st,
//	    Logger:   logger,
//	})
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	sess.Toggle("rain")                 // play at 50%
//	sess.OpenMixer(ctx)                 // seed and settle the mixer
//	sess.AdjustMixer("ocean", 0.6)      // others rebalance to 40%
//	sess.SaveMix(ctx, "")               // stored as "savedMix"
//	sess.SetSleepTimer(30)              // stop everything in 30 minutes
//	fmt.Println(sess.Status())          // 🎧 Mix Active (5) · 29:59
package session
