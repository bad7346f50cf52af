package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/config"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/logging"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/playback"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/session"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/store"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/tui"
)

var (
	cfgPath string
	mute    bool
)

var rootCmd = &cobra.Command{
	Use:           "calm-sounds-tui",
	Short:         "Interactive sound mixer",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file (.yaml or .json)")
	rootCmd.Flags().BoolVar(&mute, "mute", false, "track playback without producing sound")
}

func run(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The alternate screen owns the terminal, so logs always go to a file.
	logFile := settings.LogFile
	if logFile == "" {
		logFile = filepath.Join(config.DefaultDir(), "calm-sounds-tui.log")
	}
	logger, err := logging.New(settings.LogLevel, logFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	st, err := store.Open(settings)
	if err != nil {
		return fmt.Errorf("open mix store: %w", err)
	}
	defer st.Close()

	var driver playback.Driver = playback.NewNopDriver()
	if !mute {
		driver, err = playback.NewBeepDriver(model.DefaultCatalogue(), settings.SoundsPath, settings.SampleRate, settings.Buffer(), logger)
		if err != nil {
			return err
		}
	}

	sess, err := session.New(session.Options{
		Settings: settings,
		Driver:   driver,
		Store:    st,
		Logger:   logger,
	})
	if err != nil {
		driver.Close()
		return err
	}
	defer sess.Close()

	logger.Info("mixer started", zap.String("session", sess.ID))
	return tui.Run(cmd.Context(), tui.Options{
		Session:  sess,
		Settings: settings,
		Store:    st,
		Logger:   logger,
	})
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
