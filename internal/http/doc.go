// Package http provides the HTTP client used to fetch sound assets.
//
// The Client in this package handles:
//   - A fixed User-Agent header
//   - File downloads with progress tracking
//   - File size retrieval via HEAD requests
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, assetURL, "/path/to/rain.mp3", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// Non-200 responses are reported as *StatusError, whose Retryable method
// tells callers whether another attempt makes sense.
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
