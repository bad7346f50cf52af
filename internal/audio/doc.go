// Package audio provides sound file services: probing, ID3 tagging and
// playlist export.
//
// # Library Scan
//
// ScanLibrary checks which catalogue sounds exist in the sounds directory,
// probing files concurrently:
//
//	items, err := audio.ScanLibrary(ctx, dir, catalogue, 4)
//	missing := audio.Missing(items)
//
// The Prober reads ID3 titles from MP3 files and format details from WAV
// files.
//
// # ID3 Tagging
//
// Use the Tagger to stamp fetched MP3 assets with their catalogue title:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, sound)
//
// # Playlist Generation
//
// Export a mix as a playlist:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("savedMix", audio.EntriesForMix(channels, catalogue))
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
