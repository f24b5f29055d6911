package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatch(t *testing.T, path string, fn func(context.Context) error) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, 20*time.Millisecond, fn) }()

	// Give the watcher time to register before the test writes.
	time.Sleep(100 * time.Millisecond)

	return func() {
		stop()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Watch did not return after cancel")
		}
	}
}

func TestWatchRunsAfterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	runs := make(chan struct{}, 10)
	cancel := startWatch(t, path, func(context.Context) error {
		runs <- struct{}{}
		return nil
	})
	defer cancel()

	require.NoError(t, os.WriteFile(path, []byte(`{"blocks":{}}`), 0644))
	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("no run after write")
	}
}

func TestWatchDebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	var n atomic.Int32
	cancel := startWatch(t, path, func(context.Context) error {
		n.Add(1)
		return nil
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0644))
	}
	time.Sleep(300 * time.Millisecond)
	cancel()

	assert.Equal(t, int32(1), n.Load())
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	var n atomic.Int32
	cancel := startWatch(t, path, func(context.Context) error {
		n.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	cancel()

	assert.Zero(t, n.Load())
}

func TestWatchKeepsGoingAfterError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	runs := make(chan struct{}, 10)
	cancel := startWatch(t, path, func(context.Context) error {
		runs <- struct{}{}
		return assert.AnError
	})
	defer cancel()

	for i := 0; i < 2; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0644))
		select {
		case <-runs:
		case <-time.After(2 * time.Second):
			t.Fatalf("no run after write %d", i)
		}
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "map.json"), 0, func(context.Context) error { return nil })
	assert.Error(t, err)
}
