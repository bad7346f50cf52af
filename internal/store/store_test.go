package store

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/config"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sq, err := OpenSQLite(filepath.Join(dir, "db", "mixes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Store{
		"file":   NewFileStore(filepath.Join(dir, "mixes.json")),
		"sqlite": sq,
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := st.LoadMix(ctx, DefaultMixName)
			require.NoError(t, err)
			assert.False(t, ok)

			names, err := st.ListMixes(ctx)
			require.NoError(t, err)
			assert.Empty(t, names)

			mix := model.Mix{"ocean": 0.4, "rain": 0.6}
			require.NoError(t, st.SaveMix(ctx, DefaultMixName, mix))
			require.NoError(t, st.SaveMix(ctx, "evening", model.Mix{"fire": 1}))

			got, ok, err := st.LoadMix(ctx, DefaultMixName)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, mix, got)

			require.NoError(t, st.SaveMix(ctx, DefaultMixName, model.Mix{"rain": 1}))
			got, _, err = st.LoadMix(ctx, DefaultMixName)
			require.NoError(t, err)
			assert.Equal(t, model.Mix{"rain": 1}, got, "save replaces")

			names, err = st.ListMixes(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"evening", DefaultMixName}, names)

			require.NoError(t, st.DeleteMix(ctx, "evening"))
			require.NoError(t, st.DeleteMix(ctx, "evening"), "deleting twice is fine")
			names, err = st.ListMixes(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{DefaultMixName}, names)
		})
	}
}

func TestStore_InvalidName(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := st.SaveMix(ctx, "  ", model.Mix{"rain": 1})
			assert.True(t, errorx.IsOfType(err, InvalidName), "got %v", err)

			_, _, err = st.LoadMix(ctx, "")
			assert.True(t, errorx.IsOfType(err, InvalidName))
		})
	}
}

func TestStore_DropsNonFiniteWeights(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.SaveMix(ctx, "m", model.Mix{"rain": math.NaN(), "fire": 0.5}))
			got, _, err := st.LoadMix(ctx, "m")
			require.NoError(t, err)
			assert.Equal(t, model.Mix{"fire": 0.5}, got)
		})
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mixes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	st := NewFileStore(path)
	_, _, err := st.LoadMix(ctx, DefaultMixName)
	assert.True(t, IsCorrupt(err), "got %v", err)

	require.NoError(t, st.SaveMix(ctx, DefaultMixName, model.Mix{"rain": 1}), "save recovers a corrupt file")
	got, ok, err := st.LoadMix(ctx, DefaultMixName)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.Mix{"rain": 1}, got)
}

func TestFileStore_CorruptEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"savedMix": "loud", "ok": {"rain": 1}}`), 0o644))

	st := NewFileStore(path)
	_, _, err := st.LoadMix(context.Background(), DefaultMixName)
	assert.True(t, IsCorrupt(err))

	got, ok, err := st.LoadMix(context.Background(), "ok")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.Mix{"rain": 1}, got)
}

func TestSQLiteStore_UpdatedAt(t *testing.T) {
	st, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer st.Close()

	fixed := time.Date(2024, 5, 1, 21, 30, 0, 0, time.UTC)
	st.now = func() time.Time { return fixed }

	ctx := context.Background()
	require.NoError(t, st.SaveMix(ctx, "night", model.Mix{"rain": 1}))

	at, ok, err := st.UpdatedAt(ctx, "night")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, fixed.Equal(at))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s := config.DefaultSettings()

	s.StorePath = filepath.Join(dir, "mixes.json")
	st, err := Open(s)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, st)
	st.Close()

	s.StoreBackend = config.StoreSQLite
	s.StorePath = filepath.Join(dir, "mixes.db")
	st, err = Open(s)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, st)
	st.Close()

	s.StoreBackend = "redis"
	_, err = Open(s)
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "mixes.json")
	st := NewFileStore(path)

	var calls atomic.Int32
	changed := make(chan struct{}, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 50*time.Millisecond, nil, func() {
			calls.Add(1)
			changed <- struct{}{}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	for i := 0; i < 3; i++ {
		require.NoError(t, st.SaveMix(context.Background(), DefaultMixName, model.Mix{"rain": float64(i) / 10}))
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "a burst of saves is reported once")

	cancel()
	require.NoError(t, <-done)
}
