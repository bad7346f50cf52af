package store

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/joomcode/errorx"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/config"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

// DefaultMixName is the key the mixer saves to and seeds from.
const DefaultMixName = "savedMix"

var (
	Errors = errorx.NewNamespace("store")

	// InvalidName is raised for empty mix names.
	InvalidName = Errors.NewType("invalid_name")

	// Corrupt is raised when persisted data cannot be decoded.
	Corrupt = Errors.NewType("corrupt")

	// Backend wraps I/O and database failures.
	Backend = Errors.NewType("backend")
)

// Store persists named mixes.
type Store interface {
	// LoadMix returns the mix saved under name. ok is false when there is none.
	LoadMix(ctx context.Context, name string) (mix model.Mix, ok bool, err error)

	// SaveMix stores mix under name, replacing any previous value.
	SaveMix(ctx context.Context, name string, mix model.Mix) error

	// ListMixes returns the saved mix names, sorted.
	ListMixes(ctx context.Context) ([]string, error)

	// DeleteMix removes name. Deleting a missing mix is not an error.
	DeleteMix(ctx context.Context, name string) error

	Close() error
}

// Open returns the backend selected by settings.
//
// Example:
//
//	st, err := store.Open(settings)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
func Open(settings *config.Settings) (Store, error) {
	switch settings.StoreBackend {
	case config.StoreSQLite:
		return OpenSQLite(settings.StorePath)
	case config.StoreFile, "":
		return NewFileStore(settings.StorePath), nil
	default:
		return nil, errorx.IllegalArgument.New("unknown store backend %q", settings.StoreBackend)
	}
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return InvalidName.New("mix name must not be empty")
	}
	return nil
}

// encodeMix drops values JSON cannot carry before marshalling.
func encodeMix(mix model.Mix) ([]byte, error) {
	clean := make(model.Mix, len(mix))
	for id, w := range mix {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			continue
		}
		clean[id] = w
	}
	return json.Marshal(clean)
}

func decodeMix(name string, data []byte) (model.Mix, error) {
	var mix model.Mix
	if err := json.Unmarshal(data, &mix); err != nil {
		return nil, Corrupt.Wrap(err, "decode mix %q", name)
	}
	if mix == nil {
		mix = model.Mix{}
	}
	return mix, nil
}

// IsCorrupt reports whether err comes from undecodable stored data.
func IsCorrupt(err error) bool {
	return errorx.IsOfType(err, Corrupt)
}
