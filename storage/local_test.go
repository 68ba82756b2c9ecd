package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := t.Context()

	data := []byte("original document bytes")
	loc, err := store.Upload(ctx, data, "docs/u1/file.txt", UploadOptions{ContentType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, loc.Backend)
	assert.Equal(t, "docs/u1/file.txt", loc.Key)
	assert.Equal(t, "/uploads/docs/u1/file.txt", loc.URL)

	got, err := store.Download(ctx, *loc)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	exists, err := store.Exists(ctx, *loc)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalStoreDownloadMissing(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	_, err := store.Download(t.Context(), Location{Backend: BackendLocal, Key: "missing.bin"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreDeleteIdempotent(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := t.Context()

	loc, err := store.Upload(ctx, []byte("x"), "a/b.bin", UploadOptions{})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, *loc))
	// Deleting again is not an error.
	require.NoError(t, store.Delete(ctx, *loc))

	exists, err := store.Exists(ctx, *loc)
	require.NoError(t, err)
	assert.False(t, exists)
}
