package playback

import (
	"fmt"

	"github.com/joomcode/errorx"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

// CommandKind is the driver call a Command stands for.
type CommandKind int

const (
	CmdSetVolume CommandKind = iota
	CmdPlay
	CmdPause
)

// String returns a short name for logs.
func (k CommandKind) String() string {
	switch k {
	case CmdPlay:
		return "play"
	case CmdPause:
		return "pause"
	default:
		return "volume"
	}
}

// Command is a single driver call derived from a state change.
type Command struct {
	Kind   CommandKind
	ID     string
	Volume float64
}

func (c Command) String() string {
	if c.Kind == CmdSetVolume {
		return fmt.Sprintf("%s %s %d%%", c.Kind, c.ID, model.Percent(c.Volume))
	}
	return fmt.Sprintf("%s %s", c.Kind, c.ID)
}

// Reconcile diffs two channel states and returns the driver calls that
// bring playback from before to after.
//
// For every channel whose weight changed a CmdSetVolume is emitted. A
// channel going from silent to audible is followed by CmdPlay; one going
// from audible to silent by CmdPause. Channels missing from before are
// treated as silent. Unchanged channels produce nothing.
//
// Example:
//
//	cmds := Reconcile(
//	    []model.Channel{{ID: "rain", Weight: 0}, {ID: "fire", Weight: 1}},
//	    []model.Channel{{ID: "rain", Weight: 0.4}, {ID: "fire", Weight: 0.6}},
//	)
//	// volume rain 40%, play rain, volume fire 60%
func Reconcile(before, after []model.Channel) []Command {
	prev := make(map[string]float64, len(before))
	for _, c := range before {
		prev[c.ID] = c.Weight
	}

	var cmds []Command
	for _, c := range after {
		old := prev[c.ID]
		if old == c.Weight {
			continue
		}
		cmds = append(cmds, Command{Kind: CmdSetVolume, ID: c.ID, Volume: c.Weight})
		switch {
		case old <= 0 && c.Weight > 0:
			cmds = append(cmds, Command{Kind: CmdPlay, ID: c.ID})
		case old > 0 && c.Weight <= 0:
			cmds = append(cmds, Command{Kind: CmdPause, ID: c.ID})
		}
	}
	return cmds
}

// Apply runs cmds against d in order. Every command is attempted; the
// returned error carries all failures, each decorated with its command.
func Apply(d Driver, cmds []Command) error {
	var errs []error
	for _, cmd := range cmds {
		var err error
		switch cmd.Kind {
		case CmdPlay:
			err = d.Play(cmd.ID)
		case CmdPause:
			err = d.Pause(cmd.ID)
		default:
			err = d.SetVolume(cmd.ID, cmd.Volume)
		}
		if err != nil {
			errs = append(errs, errorx.Decorate(err, "%s", cmd))
		}
	}
	return errorx.DecorateMany("apply playback commands", errs...)
}
