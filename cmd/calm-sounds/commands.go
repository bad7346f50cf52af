package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/audio"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/download"
	ioutils "github.com/Ayushsahu75/mental-healthcare-hub/internal/io"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/playback"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/session"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/store"
)

var (
	mixName      string
	exportFormat string
	exportOut    string
	playMinutes  int
)

var soundsCmd = &cobra.Command{
	Use:   "sounds",
	Short: "List the catalogue and which sound files are present",
	Args:  cobra.NoArgs,
	RunE:  runSounds,
}

var mixCmd = &cobra.Command{
	Use:   "mix",
	Short: "Show, change and manage saved mixes",
}

var mixShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a saved mix",
	Args:  cobra.NoArgs,
	RunE:  runMixShow,
}

var mixSetCmd = &cobra.Command{
	Use:   "set [sound=percent]...",
	Short: "Move mixer channels and save the result",
	Long: `Moves each named channel to the given percentage, in order, and saves the
mix. The other channels rebalance after every move so the total stays 100%.

Example:
  calm-sounds mix set ocean=60 rain=30
  calm-sounds mix set --name night fire=100`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMixSet,
}

var mixListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved mixes",
	Args:  cobra.NoArgs,
	RunE:  runMixList,
}

var mixDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a saved mix",
	Args:  cobra.NoArgs,
	RunE:  runMixDelete,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a saved mix as a playlist",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download missing sound files from the asset server",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a saved mix until interrupted or the sleep timer ends",
	Args:  cobra.NoArgs,
	RunE:  runPlay,
}

func init() {
	for _, c := range []*cobra.Command{mixShowCmd, mixSetCmd, mixDeleteCmd, exportCmd, playCmd} {
		c.Flags().StringVar(&mixName, "name", store.DefaultMixName, "mix name")
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "m3u", "playlist format: m3u, pls, wpl, zpl")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	playCmd.Flags().IntVar(&playMinutes, "minutes", 0, "sleep timer in minutes (0 plays until interrupted)")

	mixCmd.AddCommand(mixShowCmd, mixSetCmd, mixListCmd, mixDeleteCmd)
}

func runSounds(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	catalogue := model.DefaultCatalogue()

	items, err := audio.ScanLibrary(cmd.Context(), settings.SoundsPath, catalogue, settings.MaxConcurrentDownloads)
	if err != nil {
		return err
	}

	mixer := make(map[string]bool, len(settings.MixerSounds))
	for _, id := range settings.MixerSounds {
		mixer[id] = true
	}

	byID := make(map[string]audio.LibraryItem, len(items))
	for _, it := range items {
		byID[it.Sound.ID] = it
	}

	for _, cat := range catalogue.Categories() {
		fmt.Fprintf(out, "%s\n", strings.ToUpper(string(cat)))
		for _, s := range catalogue.ByCategory(cat) {
			it := byID[s.ID]
			state := "missing"
			switch {
			case it.Err != nil:
				state = "unreadable"
			case it.Present:
				state = "ok"
				if it.Info != nil && it.Info.Duration > 0 {
					state = "ok " + it.Info.Duration.Round(time.Second).String()
				}
			}
			flag := " "
			if mixer[s.ID] {
				flag = "*"
			}
			fmt.Fprintf(out, "  %s %-10s %-22s %s\n", flag, s.ID, s.Label(), state)
		}
	}

	if missing := audio.Missing(items); len(missing) > 0 {
		fmt.Fprintf(out, "\n%d sound(s) missing from %s, run `calm-sounds fetch`\n", len(missing), settings.SoundsPath)
	}
	return nil
}

// printMix writes the active channels, heaviest first, and the total.
func printMix(w io.Writer, name string, channels []model.Channel) {
	catalogue := model.DefaultCatalogue()
	fmt.Fprintf(w, "%s\n", name)
	for _, c := range model.SortedByWeight(channels) {
		if !c.Active() {
			continue
		}
		label := c.ID
		if s, ok := catalogue.Get(c.ID); ok {
			label = s.Label()
		}
		fmt.Fprintf(w, "  %-22s %3d%%\n", label, model.Percent(c.Weight))
	}
	fmt.Fprintf(w, "  %-22s %3d%%\n", "Total", model.Percent(model.TotalWeight(channels)))
}

// loadMix reads a saved mix as channels over the mixer sounds.
func loadMix(ctx context.Context, st store.Store, name string) ([]model.Channel, error) {
	mix, ok, err := st.LoadMix(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorx.DataUnavailable.New("no saved mix named %q", name)
	}
	return mix.Clean(model.DefaultCatalogue()).Channels(settings.MixerSounds), nil
}

func runMixShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	channels, err := loadMix(cmd.Context(), st, mixName)
	if err != nil {
		return err
	}
	printMix(cmd.OutOrStdout(), mixName, channels)
	return nil
}

// parseLevel parses "sound=percent" into an ID and a weight in [0, 1].
func parseLevel(arg string) (string, float64, error) {
	id, pct, ok := strings.Cut(arg, "=")
	if !ok || id == "" {
		return "", 0, fmt.Errorf("expected sound=percent, got %q", arg)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(pct, "%"), 64)
	if err != nil {
		return "", 0, fmt.Errorf("bad percentage in %q: %w", arg, err)
	}
	return id, v / 100, nil
}

func runMixSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	type level struct {
		id string
		v  float64
	}
	levels := make([]level, 0, len(args))
	for _, arg := range args {
		id, v, err := parseLevel(arg)
		if err != nil {
			return err
		}
		levels = append(levels, level{id, v})
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := newSession(playback.NewNopDriver(), st)
	if err != nil {
		return err
	}
	defer sess.Close()

	if _, err := sess.PlayMix(ctx, mixName); err != nil {
		if !errorx.IsOfType(err, errorx.DataUnavailable) {
			return err
		}
		if _, err := sess.OpenMixer(ctx); err != nil {
			return err
		}
	}

	var channels []model.Channel
	for _, l := range levels {
		channels, err = sess.AdjustMixer(l.id, l.v)
		if err != nil {
			return fmt.Errorf("%s: %w", l.id, err)
		}
	}

	if _, err := sess.SaveMix(ctx, mixName); err != nil {
		return err
	}
	printMix(cmd.OutOrStdout(), mixName, channels)
	return nil
}

func runMixList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	names, err := st.ListMixes(cmd.Context())
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func runMixDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteMix(cmd.Context(), mixName); err != nil {
		return err
	}
	logger.Info("mix deleted", zap.String("name", mixName))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := audio.ParsePlaylistFormat(exportFormat)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	channels, err := loadMix(cmd.Context(), st, mixName)
	if err != nil {
		return err
	}

	entries := audio.EntriesForMix(channels, model.DefaultCatalogue())
	if len(entries) == 0 {
		return fmt.Errorf("mix %q has no active sounds", mixName)
	}
	content := audio.NewPlaylistCreator(format, true).CreatePlaylist(mixName, entries)

	if exportOut == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}
	if err := ioutils.WriteFileAtomic(cmd.Context(), exportOut, []byte(content)); err != nil {
		return err
	}
	logger.Info("playlist written", zap.String("path", exportOut), zap.String("format", exportFormat))
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	manager := download.NewManager(settings, model.DefaultCatalogue(), logger, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !verbose {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "✗ "
		case download.LevelWarning:
			prefix = "! "
		case download.LevelSuccess:
			prefix = "✓ "
		case download.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}

		fmt.Fprintln(out, prefix+event.Message)
	})

	if err := manager.Initialize(ctx); err != nil {
		return err
	}
	if err := manager.StartDownloads(ctx); err != nil {
		if ctx.Err() != nil {
			return errors.New("fetch cancelled")
		}
		return err
	}

	received, _, files, total := manager.GetProgress()
	fmt.Fprintf(out, "Fetched %d/%d files (%.2f MB)\n", files, total, float64(received)/1024/1024)
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	driver, err := newDriver(model.DefaultCatalogue())
	if err != nil {
		return err
	}
	sess, err := newSession(driver, st)
	if err != nil {
		driver.Close()
		return err
	}
	defer sess.Close()

	if _, err := sess.PlayMix(ctx, mixName); err != nil {
		if !errorx.IsOfType(err, errorx.DataUnavailable) {
			return err
		}
		logger.Info("no saved mix, using the default", zap.String("name", mixName))
		if _, err := sess.OpenMixer(ctx); err != nil {
			return err
		}
	}
	sess.SetSleepTimer(playMinutes)

	return watchStatus(ctx, cmd.OutOrStdout(), sess.Status, sess.Timer().Done, time.Second)
}

// watchStatus redraws the status line every interval until ctx is done or
// finished reports true.
func watchStatus(ctx context.Context, w io.Writer, status func() session.Status, finished func() bool, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fmt.Fprintf(w, "\r\033[K%s", status())
		if finished() {
			fmt.Fprintln(w)
			return nil
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return nil
		case <-ticker.C:
		}
	}
}
