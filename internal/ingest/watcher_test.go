package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, events <-chan string, errs <-chan error, want int) []string {
	t.Helper()
	var got []string
	deadline := time.After(5 * time.Second)
	for len(got) < want {
		select {
		case p := <-events:
			got = append(got, p)
		case err := <-errs:
			t.Fatalf("watcher error: %v", err)
		case <-deadline:
			t.Fatalf("timed out, got %v", got)
		}
	}
	return got
}

func TestWatcherEmitsDebouncedArrivals(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, errs, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{root},
		Debounce: 20 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	notice := filepath.Join(root, "arrival.pdf")
	touch(t, notice)
	touch(t, filepath.Join(root, "ignored.txt"))

	got := collect(t, events, errs, 1)
	assert.Equal(t, []string{notice}, got)
}

func TestWatcherInitialScan(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing.docx")
	touch(t, existing)
	touch(t, filepath.Join(root, "skip.txt"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, errs, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
	}, nil)
	require.NoError(t, err)

	got := collect(t, events, errs, 1)
	assert.Equal(t, []string{existing}, got)
}

func TestWatcherStopsOnContextDone(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}}, nil)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok, "event channel must close on shutdown")
	case <-time.After(5 * time.Second):
		t.Fatal("event channel did not close")
	}
}

func TestWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}

func TestWatcherMissingRoot(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{
		Roots: []string{filepath.Join(t.TempDir(), "absent")},
	}, nil)
	assert.Error(t, err)
}
