package store

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	ioutils "github.com/Ayushsahu75/mental-healthcare-hub/internal/io"
)

// DefaultDebounce batches the bursts of events a single save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watch calls fn after the file at path changes, until ctx is done.
//
// The parent directory is watched rather than the file itself, so atomic
// saves (write temp, rename over) are seen and the file may not exist yet.
// Events arriving within debounce of each other produce a single call. fn
// runs on the watcher goroutine.
//
// Example:
//
//	go store.Watch(ctx, settings.StorePath, store.DefaultDebounce, logger, func() {
//	    program.Send(mixesChangedMsg{})
//	})
func Watch(ctx context.Context, path string, debounce time.Duration, logger *zap.Logger, fn func()) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return Backend.Wrap(err, "create watcher")
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := ioutils.EnsureDir(dir); err != nil {
		return Backend.Wrap(err, "create %s", dir)
	}
	if err := watcher.Add(dir); err != nil {
		return Backend.Wrap(err, "watch %s", dir)
	}
	logger.Debug("watching store", zap.String("path", path))

	target := filepath.Clean(path)
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			logger.Debug("store changed", zap.String("op", event.Op.String()))
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("store watcher", zap.Error(err))

		case <-timer.C:
			fn()
		}
	}
}
