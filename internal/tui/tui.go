// Package tui provides a Bubble Tea terminal user interface for the sound mixer.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/config"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/download"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/session"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/store"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 2)
)

// TimerChoices are the sleep timer presets cycled by the t key, in minutes.
var TimerChoices = []int{0, 15, 30, 60}

// State represents the current UI state.
type State int

const (
	StateMixer State = iota
	StateFetching
	StateFetchDone
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Options wires the model to a running session.
type Options struct {
	Session  *session.Session
	Settings *config.Settings
	Store    store.Store
	Logger   *zap.Logger
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	bar      progress.Model
	fetchBar progress.Model

	sess     *session.Session
	settings *config.Settings
	store    store.Store
	logger   *zap.Logger

	channels []model.Channel
	selected int
	timerIdx int
	mixes    []string
	mixIdx   int
	notice   string
	logs     []LogEntry
	err      error

	// Fetch context
	ctx     context.Context
	cancel  context.CancelFunc
	manager *download.Manager
	events  chan download.ProgressEvent

	// Fetch progress
	totalFiles      int32
	downloadedFiles int32
	receivedBytes   int64

	width  int
	height int
}

// NewModel creates a new TUI model. The mixer is opened by Init.
func NewModel(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 30

	fetchBar := progress.New(progress.WithDefaultGradient())
	fetchBar.Width = 50

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := opts.Settings
	if settings == nil {
		settings = config.DefaultSettings()
	}

	return Model{
		state:    StateMixer,
		spinner:  sp,
		bar:      bar,
		fetchBar: fetchBar,
		sess:     opts.Session,
		settings: settings,
		store:    opts.Store,
		logger:   logger,
		logs:     make([]LogEntry, 0),
		ctx:      context.Background(),
		cancel:   func() {},
	}
}

// Init opens the mixer and starts the clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.openMixer(), m.loadMixes(), tick())
}

// Message types
type (
	// MixerMsg carries the mixer weights after an open or adjust.
	MixerMsg struct {
		Channels []model.Channel
		Err      error
	}

	// MixesMsg carries the saved mix names.
	MixesMsg struct {
		Names []string
		Err   error
	}

	// SavedMsg is sent when a mix has been stored.
	SavedMsg struct {
		Name string
		Err  error
	}

	// StoreChangedMsg is sent by the store watcher.
	StoreChangedMsg struct{}

	// ProgressMsg is sent when fetch progress updates.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// FetchInitMsg is sent when the library scan completes.
	FetchInitMsg struct {
		Manager *download.Manager
		Pending int
		Err     error
	}

	// FetchDoneMsg is sent when all downloads complete.
	FetchDoneMsg struct {
		Received int64
		Files    int32
		TotalF   int32
		Err      error
	}

	// TickMsg refreshes the timer once a second.
	TickMsg time.Time

	// FetchTickMsg is for periodic fetch progress updates.
	FetchTickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(max(msg.Width-40, 10), 50)
		m.fetchBar.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case MixerMsg:
		if msg.Err != nil {
			m.notice = msg.Err.Error()
			m.log(msg.Err.Error(), download.LevelError)
			return m, nil
		}
		m.channels = msg.Channels
		if m.selected >= len(m.channels) {
			m.selected = max(0, len(m.channels)-1)
		}

	case MixesMsg:
		if msg.Err != nil {
			m.log("Error listing mixes: "+msg.Err.Error(), download.LevelWarning)
			return m, nil
		}
		m.mixes = msg.Names

	case StoreChangedMsg:
		cmds = append(cmds, m.loadMixes())

	case SavedMsg:
		if msg.Err != nil {
			m.notice = "Save failed: " + msg.Err.Error()
			m.log(m.notice, download.LevelError)
		} else {
			m.notice = fmt.Sprintf("Saved mix as %s", msg.Name)
			m.log(m.notice, download.LevelSuccess)
		}
		cmds = append(cmds, m.loadMixes())

	case TickMsg:
		// A sleep timer expiry zeroes the mixer behind our back.
		if ch, ok := m.sess.MixerChannels(); ok {
			m.channels = ch
		}
		cmds = append(cmds, tick())

	case spinner.TickMsg:
		if m.state == StateFetching {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case ProgressMsg:
		if msg.Event.Level != download.LevelVerbose || m.settings.LogLevel == "debug" {
			m.log(msg.Event.Message, msg.Event.Level)
		}
		cmds = append(cmds, waitForEvent(m.events))

	case FetchInitMsg:
		if msg.Err != nil {
			m.state = StateFetchDone
			m.err = msg.Err
			return m, nil
		}
		m.manager = msg.Manager
		cmds = append(cmds, m.startFetch(), fetchTick())

	case FetchDoneMsg:
		m.receivedBytes = msg.Received
		m.downloadedFiles = msg.Files
		m.totalFiles = msg.TotalF
		m.state = StateFetchDone
		switch {
		case m.ctx.Err() != nil:
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.err = msg.Err
		}

	case FetchTickMsg:
		if m.manager != nil && m.state == StateFetching {
			received, _, files, totalFiles := m.manager.GetProgress()
			m.receivedBytes = received
			m.downloadedFiles = files
			m.totalFiles = totalFiles

			var percent float64
			if totalFiles > 0 {
				percent = float64(files) / float64(totalFiles)
			}
			cmds = append(cmds, m.fetchBar.SetPercent(percent), fetchTick())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.fetchBar.Update(msg)
		m.fetchBar = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	switch m.state {
	case StateFetching:
		if key == "esc" {
			m.cancel()
		}
		return m, nil
	case StateFetchDone:
		if key == "esc" || key == "enter" || key == "q" {
			m.state = StateMixer
			m.err = nil
			m.manager = nil
		}
		return m, nil
	}

	switch key {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.channels)-1 {
			m.selected++
		}

	case "left", "h":
		return m.nudge(-m.settings.AdjustStep)

	case "right", "l":
		return m.nudge(m.settings.AdjustStep)

	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return m.setSelected(float64(key[0]-'0') / 10)

	case " ":
		m.sess.ToggleAll()
		m.notice = m.sess.Status().String()

	case "x":
		m.sess.StopAll()
		m.timerIdx = 0
		m.notice = "Stopped all sounds"
		return m, m.refreshMixer()

	case "t":
		m.timerIdx = (m.timerIdx + 1) % len(TimerChoices)
		minutes := TimerChoices[m.timerIdx]
		m.sess.SetSleepTimer(minutes)
		if minutes == 0 {
			m.notice = "Sleep timer off"
		} else {
			m.notice = fmt.Sprintf("Sleep timer set for %d minutes", minutes)
		}

	case "s":
		return m, m.saveMix()

	case "m":
		if len(m.mixes) == 0 {
			m.notice = "No saved mixes"
			return m, nil
		}
		name := m.mixes[m.mixIdx%len(m.mixes)]
		m.mixIdx++
		m.notice = "Playing " + name
		return m, m.playMix(name)

	case "f":
		return m.beginFetch()
	}

	return m, nil
}

// nudge moves the selected channel by delta, stopping at 0% and 100%.
func (m Model) nudge(delta float64) (tea.Model, tea.Cmd) {
	if len(m.channels) == 0 {
		return m, nil
	}
	w := m.channels[m.selected].Weight + delta
	return m.setSelected(math.Round(w*100) / 100)
}

func (m Model) setSelected(v float64) (tea.Model, tea.Cmd) {
	if len(m.channels) == 0 {
		return m, nil
	}
	v = math.Max(0, math.Min(1, v))
	id := m.channels[m.selected].ID
	ch, err := m.sess.AdjustMixer(id, v)
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.channels = ch
	m.notice = ""
	return m, nil
}

func (m Model) beginFetch() (tea.Model, tea.Cmd) {
	m.state = StateFetching
	m.err = nil
	m.logs = m.logs[:0]
	m.downloadedFiles, m.totalFiles, m.receivedBytes = 0, 0, 0
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.events = make(chan download.ProgressEvent, 64)
	return m, tea.Batch(m.initFetch(), waitForEvent(m.events), m.spinner.Tick)
}

func (m *Model) log(msg string, level download.ProgressLevel) {
	m.logs = append(m.logs, LogEntry{Message: msg, Level: level})
	// Keep only last 8 logs
	if len(m.logs) > 8 {
		m.logs = m.logs[len(m.logs)-8:]
	}
}

// tick returns a command that fires once a second.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// fetchTick returns a command to tick fetch progress updates.
func fetchTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return FetchTickMsg{}
	})
}

// waitForEvent relays one progress event. It returns nil once the fetch has
// closed the channel.
func waitForEvent(events <-chan download.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: e}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render(session.MixIcon + " Calming Sounds"))
	b.WriteString("\n")

	switch m.state {
	case StateMixer:
		b.WriteString(m.viewMixer())
	case StateFetching:
		b.WriteString(m.viewFetching())
	case StateFetchDone:
		b.WriteString(m.viewFetchDone())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewMixer() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Sound Mixer"))
	b.WriteString("\n\n")

	catalogue := m.sess.Catalogue()
	for i, c := range m.channels {
		label := c.ID
		if s, ok := catalogue.Get(c.ID); ok {
			label = s.Label()
		}
		cursor := "  "
		style := infoStyle
		if i == m.selected {
			cursor = "› "
			style = selectedStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-18s", cursor, label)))
		b.WriteString(" ")
		b.WriteString(m.bar.ViewAs(c.Weight))
		b.WriteString(fmt.Sprintf(" %3d%%\n", model.Percent(c.Weight)))
	}

	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Total: %d%%", model.Percent(model.TotalWeight(m.channels)))))
	b.WriteString("\n\n")

	b.WriteString(boxStyle.Render(m.sess.Status().String()))
	b.WriteString("\n")

	if len(m.mixes) > 0 {
		b.WriteString(dimStyle.Render("Saved mixes: " + strings.Join(m.mixes, ", ")))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(warningStyle.Render(m.notice))
		b.WriteString("\n")
	}
	if len(m.logs) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderLogs())
	}

	return b.String()
}

func (m Model) viewFetching() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching sounds..."))
	b.WriteString("\n\n")

	if m.totalFiles > 0 {
		b.WriteString(m.fetchBar.View())
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf(
			"Files: %d/%d | Downloaded: %.2f MB",
			m.downloadedFiles,
			m.totalFiles,
			float64(m.receivedBytes)/1024/1024,
		)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())
	return b.String()
}

func (m Model) viewFetchDone() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(errorStyle.Render("✗ Fetch failed:"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  %s\n\n", m.err.Error()))
	} else {
		b.WriteString(boxStyle.Render(fmt.Sprintf(
			"✨ Fetch Complete!\n\n"+
				"Files: %d\n"+
				"Size: %.2f MB",
			m.downloadedFiles,
			float64(m.receivedBytes)/1024/1024,
		)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateMixer:
		return "↑/↓: select • ←/→: adjust • 0-9: set • space: play/pause all • x: stop all • t: timer • s: save • m: next mix • f: fetch • q: quit"
	case StateFetching:
		return "esc: cancel"
	case StateFetchDone:
		return "enter: back to mixer"
	}
	return ""
}

func (m Model) openMixer() tea.Cmd {
	return func() tea.Msg {
		ch, err := m.sess.OpenMixer(m.ctx)
		return MixerMsg{Channels: ch, Err: err}
	}
}

func (m Model) playMix(name string) tea.Cmd {
	return func() tea.Msg {
		ch, err := m.sess.PlayMix(context.Background(), name)
		return MixerMsg{Channels: ch, Err: err}
	}
}

func (m Model) refreshMixer() tea.Cmd {
	return func() tea.Msg {
		ch, _ := m.sess.MixerChannels()
		return MixerMsg{Channels: ch}
	}
}

func (m Model) loadMixes() tea.Cmd {
	return func() tea.Msg {
		if m.store == nil {
			return MixesMsg{}
		}
		names, err := m.store.ListMixes(context.Background())
		return MixesMsg{Names: names, Err: err}
	}
}

func (m Model) saveMix() tea.Cmd {
	return func() tea.Msg {
		_, err := m.sess.SaveMix(context.Background(), store.DefaultMixName)
		return SavedMsg{Name: store.DefaultMixName, Err: err}
	}
}

// initFetch scans the sounds directory and creates the manager.
func (m Model) initFetch() tea.Cmd {
	events := m.events
	ctx := m.ctx
	return func() tea.Msg {
		manager := download.NewManager(m.settings, m.sess.Catalogue(), m.logger, func(event download.ProgressEvent) {
			select {
			case events <- event:
			case <-ctx.Done():
			}
		})

		if err := manager.Initialize(ctx); err != nil {
			close(events)
			return FetchInitMsg{Err: err}
		}
		return FetchInitMsg{Manager: manager, Pending: len(manager.Pending())}
	}
}

// startFetch runs the downloads in the background.
func (m Model) startFetch() tea.Cmd {
	manager, events, ctx := m.manager, m.events, m.ctx
	return func() tea.Msg {
		err := manager.StartDownloads(ctx)
		close(events)
		received, _, files, totalFiles := manager.GetProgress()

		return FetchDoneMsg{
			Received: received,
			Files:    files,
			TotalF:   totalFiles,
			Err:      err,
		}
	}
}

// Run starts the TUI application and blocks until it exits. Changes to the
// mix store made by other processes refresh the saved mix list.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	if opts.Settings != nil && opts.Settings.StorePath != "" {
		go func() {
			err := store.Watch(watchCtx, opts.Settings.StorePath, store.DefaultDebounce, opts.Logger, func() {
				p.Send(StoreChangedMsg{})
			})
			if err != nil && opts.Logger != nil {
				opts.Logger.Warn("store watcher stopped", zap.Error(err))
			}
		}()
	}

	_, err := p.Run()
	return err
}
