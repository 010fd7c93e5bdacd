package recent

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/medfind/internal/query"
)

func TestFileBlobStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	blobs, err := NewFileBlobStore(dir)
	require.NoError(t, err)

	_, ok, err := blobs.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, blobs.Set(StorageKey, `[]`))
	value, ok, err := blobs.Get(StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)

	info, err := os.Stat(blobs.Path(StorageKey))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, blobs.Remove(StorageKey))
	require.NoError(t, blobs.Remove(StorageKey))
	_, ok, err = blobs.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileBlobStoreLeavesNoTempFiles(t *testing.T) {
	blobs, err := NewFileBlobStore(t.TempDir())
	require.NoError(t, err)
	store := NewStore(blobs)

	for _, q := range []string{"두통", "기침", "콧물"} {
		_, err := store.Record(EntryFor(query.ModeKeyword, query.CategorySymptom, q))
		require.NoError(t, err)
	}

	names, err := os.ReadDir(blobs.Dir())
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "recentSearches.json", names[0].Name())
	assert.Equal(t, []string{"콧물", "기침", "두통"}, queries(store.Load()))
}

func TestFileBlobStoreSanitizesKeys(t *testing.T) {
	blobs, err := NewFileBlobStore(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(blobs.Dir(), "___etc_passwd.json"), blobs.Path("../etc/passwd"))
}

func TestNewFileBlobStoreRejectsEmptyDir(t *testing.T) {
	_, err := NewFileBlobStore(" ")
	assert.Error(t, err)
}

func TestSessionDirIsPerParentProcess(t *testing.T) {
	dir := SessionDir()
	assert.Equal(t, os.TempDir(), filepath.Dir(dir))
	assert.Contains(t, filepath.Base(dir), "medfind-session-")
}

func TestWatchReportsChanges(t *testing.T) {
	blobs, err := NewFileBlobStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, blobs.Path(StorageKey), func() { changed <- struct{}{} })
	}()

	// Writes are retried until the watcher has registered the directory.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for seen := false; !seen; {
		select {
		case <-changed:
			seen = true
		case <-tick.C:
			require.NoError(t, blobs.Set(StorageKey, `[]`))
		case <-deadline:
			t.Fatal("watcher never reported a change")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
