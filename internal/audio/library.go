package audio

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

// LibraryItem is the state of one catalogue sound in the sounds directory.
type LibraryItem struct {
	Sound   model.Sound
	Path    string
	Present bool
	Info    *Info // nil when missing or unreadable
	Err     error // probe failure for a present file
}

// ScanLibrary probes every catalogue sound in dir, at most limit files at a
// time. Items are returned in catalogue order. A missing or unreadable file
// is reported on its item; only cancellation fails the whole scan.
//
// Example:
//
//	items, err := audio.ScanLibrary(ctx, settings.SoundsPath, model.DefaultCatalogue(), 4)
//	for _, it := range items {
//	    if !it.Present {
//	        fmt.Println("missing:", it.Sound.File)
//	    }
//	}
func ScanLibrary(ctx context.Context, dir string, catalogue *model.Catalogue, limit int) ([]LibraryItem, error) {
	sounds := catalogue.All()
	items := make([]LibraryItem, len(sounds))
	prober := NewProber()

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, sound := range sounds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, sound.File)
			item := LibraryItem{Sound: sound, Path: path}

			info, err := prober.Probe(path)
			switch {
			case err == nil:
				item.Present = true
				item.Info = info
			case os.IsNotExist(err):
			default:
				item.Present = true
				item.Err = err
			}
			items[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// Missing returns the sounds whose file is absent.
func Missing(items []LibraryItem) []model.Sound {
	var out []model.Sound
	for _, it := range items {
		if !it.Present {
			out = append(out, it.Sound)
		}
	}
	return out
}
