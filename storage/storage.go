package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gorm.io/gorm"
)

// Backend tags persisted on records. "browser" is a podcast-only sentinel:
// nothing is stored server-side, so it has no BlobStore.
const (
	BackendLocal    = "local"
	BackendGCS      = "gcs"
	BackendGridFS   = "gridfs"
	BackendSupabase = "supabase"
	BackendBrowser  = "browser"
)

var (
	ErrNotFound         = errors.New("storage: object not found")
	ErrPermissionDenied = errors.New("storage: permission denied")
	ErrUnknownBackend   = errors.New("storage: unknown backend")
)

// Location describes where a blob lives. Backend selects the store on
// download/delete; Key is the backend-specific identifier.
type Location struct {
	Backend   string `json:"backend"`
	Key       string `json:"key"`
	URL       string `json:"url"`
	SignedURL string `json:"signed_url,omitempty"`
}

type UploadOptions struct {
	ContentType string
	Filename    string
	OwnerID     string
}

// BlobStore is one storage backend. Delete is idempotent: removing an absent
// object is not an error. There is no cross-backend fallback at this layer.
type BlobStore interface {
	Backend() string
	Upload(ctx context.Context, data []byte, key string, opts UploadOptions) (*Location, error)
	Download(ctx context.Context, loc Location) ([]byte, error)
	Delete(ctx context.Context, loc Location) error
	Exists(ctx context.Context, loc Location) (bool, error)
}

var (
	mu          sync.RWMutex
	stores      = map[string]BlobStore{}
	defaultName = BackendGridFS
)

func Register(s BlobStore) {
	mu.Lock()
	defer mu.Unlock()
	stores[s.Backend()] = s
}

func ForBackend(name string) (BlobStore, error) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := stores[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return s, nil
}

// Default returns the backend new uploads go to, selected by STORAGE_BACKEND.
func Default() (BlobStore, error) {
	mu.RLock()
	name := defaultName
	mu.RUnlock()
	return ForBackend(name)
}

// Init wires the configured backends. GridFS (database) and local disk are
// always available; GCS and Supabase only when their env is present, since
// their absence must degrade rather than crash.
func Init(ctx context.Context, db *gorm.DB) error {
	Register(NewDatabaseStore(db))

	dir := os.Getenv("LOCAL_STORAGE_DIR")
	if dir == "" {
		dir = "uploads"
	}
	Register(NewLocalStore(dir))

	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcs, err := NewGCSStore(ctx, bucket)
		if err != nil {
			return fmt.Errorf("init gcs backend: %w", err)
		}
		Register(gcs)
	}

	if url := os.Getenv("SUPABASE_URL"); url != "" {
		Register(NewSupabaseStore(url, os.Getenv("SUPABASE_KEY")))
	}

	if name := os.Getenv("STORAGE_BACKEND"); name != "" {
		mu.Lock()
		defaultName = name
		mu.Unlock()
	}
	if _, err := Default(); err != nil {
		return err
	}
	return nil
}

// SetDefault overrides the default backend. Used by tests and by Init.
func SetDefault(name string) {
	mu.Lock()
	defer mu.Unlock()
	defaultName = name
}

// Download fetches a blob from whichever backend its location names.
func Download(ctx context.Context, loc Location) ([]byte, error) {
	s, err := ForBackend(loc.Backend)
	if err != nil {
		return nil, err
	}
	return s.Download(ctx, loc)
}

// Delete removes a blob from whichever backend its location names.
func Delete(ctx context.Context, loc Location) error {
	s, err := ForBackend(loc.Backend)
	if err != nil {
		return err
	}
	return s.Delete(ctx, loc)
}
