package playback

import "sync"

// NopDriver tracks playback state without producing sound. It is used for
// --mute and for tests.
type NopDriver struct {
	mu      sync.Mutex
	playing map[string]bool
	volume  map[string]float64
	calls   []Command
}

// NewNopDriver creates a NopDriver.
func NewNopDriver() *NopDriver {
	return &NopDriver{
		playing: make(map[string]bool),
		volume:  make(map[string]float64),
	}
}

func (d *NopDriver) Play(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing[id] = true
	d.calls = append(d.calls, Command{Kind: CmdPlay, ID: id})
	return nil
}

func (d *NopDriver) Pause(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing[id] = false
	d.calls = append(d.calls, Command{Kind: CmdPause, ID: id})
	return nil
}

func (d *NopDriver) Stop(id string) error {
	return d.Pause(id)
}

func (d *NopDriver) SetVolume(id string, volume float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.volume[id] = volume
	d.calls = append(d.calls, Command{Kind: CmdSetVolume, ID: id, Volume: volume})
	return nil
}

func (d *NopDriver) Close() error {
	return nil
}

// Playing reports whether id is currently playing.
func (d *NopDriver) Playing(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing[id]
}

// Volume returns the last volume set for id.
func (d *NopDriver) Volume(id string) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.volume[id]
}

// Calls returns every call received, in order.
func (d *NopDriver) Calls() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Command, len(d.calls))
	copy(out, d.calls)
	return out
}
