package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/docsearch/internal/logging"
)

func startWatcher(t *testing.T, path string, reload ReloadFunc) {
	t.Helper()
	w, err := New(path, reload, WithDebounce(50*time.Millisecond), WithLogger(logging.ForTest(t)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	var calls atomic.Int32
	reloaded := make(chan string, 8)
	startWatcher(t, path, func(_ context.Context, p string) error {
		calls.Add(1)
		reloaded <- p
		return nil
	})

	// a burst of writes collapses into one reload
	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte(`[{"l":"a"}]`), 0o644))
	}

	select {
	case p := <-reloaded:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, p)
	case <-time.After(5 * time.Second):
		t.Fatal("reload was not triggered")
	}

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_ReloadsOnReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	reloaded := make(chan struct{}, 8)
	startWatcher(t, path, func(context.Context, string) error {
		reloaded <- struct{}{}
		return nil
	})

	tmp := filepath.Join(dir, ".index.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`[{"l":"b"}]`), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("reload was not triggered by rename")
	}
}

func TestWatcher_SlowReloadDoesNotLandLast(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	var (
		mu      sync.Mutex
		applied []string
		running atomic.Int32
		peak    atomic.Int32
	)
	startWatcher(t, path, func(_ context.Context, p string) error {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if string(data) == "v2" {
			time.Sleep(400 * time.Millisecond)
		}
		mu.Lock()
		applied = append(applied, string(data))
		mu.Unlock()
		return nil
	})

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("v3"), 0o644))

	last := func() string {
		mu.Lock()
		defer mu.Unlock()
		if len(applied) == 0 {
			return ""
		}
		return applied[len(applied)-1]
	}
	require.Eventually(t, func() bool { return last() == "v3" }, 5*time.Second, 20*time.Millisecond)

	// give any straggling reload time to land
	time.Sleep(600 * time.Millisecond)
	assert.Equal(t, "v3", last())
	assert.Equal(t, int32(1), peak.Load())
}

func TestWatcher_SkipsSupersededGeneration(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	w, err := New(filepath.Join(dir, "index.json"), func(context.Context, string) error {
		calls.Add(1)
		return nil
	}, WithLogger(logging.ForTest(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.watcher.Close() })

	w.mu.Lock()
	w.gen = 2
	w.mu.Unlock()

	w.runReload(context.Background(), 1)
	assert.Zero(t, calls.Load())

	w.runReload(context.Background(), 2)
	assert.Equal(t, int32(1), calls.Load())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.runReload(ctx, 2)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	var calls atomic.Int32
	startWatcher(t, path, func(context.Context, string) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`[]`), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "index.json"), func(context.Context, string) error { return nil })
	assert.Error(t, err)
}

func TestWatcher_Path(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "index.js"), func(context.Context, string) error { return nil })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.watcher.Close() })
	assert.True(t, filepath.IsAbs(w.Path()))
}
