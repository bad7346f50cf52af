package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/config"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/logging"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/playback"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/session"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/store"
)

var (
	cfgPath string
	verbose bool
	mute    bool

	settings *config.Settings
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "calm-sounds",
	Short: "Calming sounds player with a proportional mixer",
	Long: `calm-sounds plays looping ambient sounds and mixes them.

The mixer keeps its channels summing to 100%: raising one sound lowers the
others in proportion. Mixes can be saved, exported as playlists and played
with a sleep timer.

For the interactive mixer, use calm-sounds-tui.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := settings.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, settings.LogFile)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file (.yaml or .json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&mute, "mute", false, "track playback without producing sound")

	rootCmd.AddCommand(soundsCmd, mixCmd, exportCmd, fetchCmd, playCmd)
}

// openStore opens the configured mix store.
func openStore() (store.Store, error) {
	st, err := store.Open(settings)
	if err != nil {
		return nil, fmt.Errorf("open mix store: %w", err)
	}
	return st, nil
}

// newDriver returns the speaker driver, or a silent one with --mute.
func newDriver(catalogue *model.Catalogue) (playback.Driver, error) {
	if mute {
		return playback.NewNopDriver(), nil
	}
	return playback.NewBeepDriver(catalogue, settings.SoundsPath, settings.SampleRate, settings.Buffer(), logger)
}

// newSession builds a session over st with the given driver.
func newSession(driver playback.Driver, st store.Store) (*session.Session, error) {
	return session.New(session.Options{
		Settings: settings,
		Driver:   driver,
		Store:    st,
		Logger:   logger,
	})
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
