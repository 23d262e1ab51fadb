package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DetectsChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mesh.neu")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0644))

	w, err := New(20*time.Millisecond, nil, file)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(file, []byte("b"), 0644))
	require.NoError(t, os.WriteFile(file, []byte("c"), 0644))

	select {
	case got := <-w.Changes:
		want, _ := filepath.Abs(file)
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}

	// burst collapsed into one event
	select {
	case got := <-w.Changes:
		t.Fatalf("unexpected second event for %s", got)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	file := filepath.Join(t.TempDir(), "mesh.neu")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	w, err := New(0, nil, file)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { w.Run(ctx); close(done) }()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	_, ok := <-w.Changes
	assert.False(t, ok)
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(0, nil)
	assert.Error(t, err)
	_, err = New(0, nil, filepath.Join(t.TempDir(), "missing", "mesh.neu"))
	assert.Error(t, err)
}

func TestWatcher_TinyDebounce(t *testing.T) {
	file := filepath.Join(t.TempDir(), "mesh.neu")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0644))

	w, err := New(time.Nanosecond, nil, file)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(file, []byte("b"), 0644))
	select {
	case got := <-w.Changes:
		want, _ := filepath.Abs(file)
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}
