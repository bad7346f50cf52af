// Package download fetches the catalogue's sound assets into the sounds
// directory.
//
// # Manager
//
// The Manager coordinates the fetch:
//
//  1. Scan the sounds directory for catalogue files
//  2. Ask the asset server for the size of each missing file
//  3. Download missing files concurrently
//  4. Tag MP3 files with ID3 metadata (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(settings, model.DefaultCatalogue(), logger, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx); err != nil {
//	    return err
//	}
//	if err := manager.StartDownloads(ctx); err != nil {
//	    return err
//	}
//
// # Concurrency
//
// At most settings.MaxConcurrentDownloads files are fetched at once.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Callbacks are serialized, so the callback does not need its own locking.
//
// # Retry Logic
//
// Failed downloads are retried with exponential backoff, configurable via
// settings.DownloadMaxRetries, settings.DownloadRetryCooldown and
// settings.DownloadRetryExponent. Client errors such as 404 are not retried.
package download
