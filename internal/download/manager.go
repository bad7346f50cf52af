package download

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/audio"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/config"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/http"
	ioutils "github.com/Ayushsahu75/mental-healthcare-hub/internal/io"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l ProgressLevel) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// ErrNoAssetURL is returned when no asset base URL is configured.
var ErrNoAssetURL = errors.New("asset_base_url is not set")

// Manager fetches catalogue sounds that are missing from the sounds directory.
type Manager struct {
	settings   *config.Settings
	catalogue  *model.Catalogue
	httpClient *http.Client
	tagger     *audio.Tagger
	logger     *zap.Logger

	pending         []model.Sound
	totalBytes      int64
	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32
	failedFiles     int32

	// wait blocks for d or until ctx is done.
	wait func(ctx context.Context, d time.Duration) error

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new download Manager. logger may be nil.
func NewManager(settings *config.Settings, catalogue *model.Catalogue, logger *zap.Logger, onProgress func(ProgressEvent)) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	tagCfg := audio.DefaultTagConfig()
	tagCfg.ModifyTags = settings.ModifyTags

	return &Manager{
		settings:   settings,
		catalogue:  catalogue,
		httpClient: http.NewClient(),
		tagger:     audio.NewTagger(tagCfg),
		logger:     logger,
		wait:       sleep,
		onProgress: onProgress,
	}
}

// Initialize scans the sounds directory and records which sounds need
// fetching, along with their remote sizes where the server reports them.
func (m *Manager) Initialize(ctx context.Context) error {
	if m.settings.AssetBaseURL == "" {
		return ErrNoAssetURL
	}

	items, err := audio.ScanLibrary(ctx, m.settings.SoundsPath, m.catalogue, m.settings.MaxConcurrentDownloads)
	if err != nil {
		return fmt.Errorf("scan %s: %w", m.settings.SoundsPath, err)
	}
	for _, it := range items {
		if it.Err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Unreadable: %s (%v)", it.Sound.File, it.Err), Level: LevelWarning})
		}
	}

	m.pending = audio.Missing(items)
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Found %d of %d sounds, %d to fetch", len(items)-len(m.pending), len(items), len(m.pending)),
		Level:   LevelInfo,
	})

	m.calculateTotals(ctx)
	return nil
}

// Pending returns the sounds Initialize found missing.
func (m *Manager) Pending() []model.Sound {
	out := make([]model.Sound, len(m.pending))
	copy(out, m.pending)
	return out
}

// StartDownloads fetches every pending sound. A sound that fails does not
// stop the others; the returned error counts the failures.
func (m *Manager) StartDownloads(ctx context.Context) error {
	if len(m.pending) == 0 {
		m.progress(ProgressEvent{Message: "All sounds present", Level: LevelSuccess})
		return nil
	}
	if err := ioutils.EnsureDir(m.settings.SoundsPath); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.settings.MaxConcurrentDownloads))

	for _, sound := range m.pending {
		g.Go(func() error {
			if err := m.downloadSound(gctx, sound); err != nil {
				atomic.AddInt32(&m.failedFiles, 1)
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", sound.File, err), Level: LevelError})
				m.logger.Warn("fetch failed", zap.String("sound", sound.ID), zap.Error(err))
				return nil // Continue with other sounds
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	failed := atomic.LoadInt32(&m.failedFiles)
	if failed > 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished, %d sounds failed", failed), Level: LevelWarning})
		return fmt.Errorf("%d of %d sounds failed", failed, len(m.pending))
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Fetched %d sounds", len(m.pending)), Level: LevelSuccess})
	return nil
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), atomic.LoadInt64(&m.totalBytes),
		atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

// assetURL joins the configured base URL and a sound file name.
func (m *Manager) assetURL(file string) string {
	return strings.TrimRight(m.settings.AssetBaseURL, "/") + "/" + url.PathEscape(file)
}

func (m *Manager) calculateTotals(ctx context.Context) {
	for _, sound := range m.pending {
		atomic.AddInt32(&m.totalFiles, 1)
		size, err := m.httpClient.GetFileSize(ctx, m.assetURL(sound.File))
		if err == nil {
			atomic.AddInt64(&m.totalBytes, size)
		}
	}
}

func (m *Manager) downloadSound(ctx context.Context, sound model.Sound) error {
	dest := filepath.Join(m.settings.SoundsPath, sound.File)
	src := m.assetURL(sound.File)
	retries := max(1, m.settings.DownloadMaxRetries)

	var err error
	for tries := 1; tries <= retries; tries++ {
		var received int64
		err = m.httpClient.DownloadFile(ctx, src, dest, func(written, total int64) {
			atomic.AddInt64(&m.receivedBytes, written-received)
			received = written
		})
		if err == nil {
			break
		}
		// A partial body was counted; it will be fetched again.
		atomic.AddInt64(&m.receivedBytes, -received)

		var status *http.StatusError
		if errors.As(err, &status) && !status.Retryable() {
			return err
		}
		if tries == retries {
			break
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s", tries, retries, sound.File), Level: LevelWarning})
		if werr := m.wait(ctx, m.settings.RetryDelay(tries)); werr != nil {
			return werr
		}
	}

	if err != nil {
		return err
	}

	atomic.AddInt32(&m.downloadedFiles, 1)

	if err := m.tagger.SaveTags(dest, sound); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", sound.File, err), Level: LevelWarning})
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", sound.File), Level: LevelVerbose})
	m.logger.Info("sound fetched", zap.String("sound", sound.ID), zap.String("path", dest))
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProgress(event)
}
