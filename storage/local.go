package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

type localStore struct {
	dir string
}

// NewLocalStore stores blobs under dir, keyed by relative path.
func NewLocalStore(dir string) BlobStore {
	return &localStore{dir: dir}
}

func (s *localStore) Backend() string { return BackendLocal }

func (s *localStore) Upload(ctx context.Context, data []byte, key string, opts UploadOptions) (*Location, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, mapFSError(err)
	}
	url := "/uploads/" + key
	return &Location{Backend: BackendLocal, Key: key, URL: url, SignedURL: url}, nil
}

func (s *localStore) Download(ctx context.Context, loc Location) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(loc.Key)))
	if err != nil {
		return nil, mapFSError(err)
	}
	return data, nil
}

func (s *localStore) Delete(ctx context.Context, loc Location) error {
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(loc.Key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return mapFSError(err)
	}
	return nil
}

func (s *localStore) Exists(ctx context.Context, loc Location) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, filepath.FromSlash(loc.Key)))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, mapFSError(err)
}

func mapFSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	default:
		return err
	}
}
