package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type gcsStore struct {
	client *gcstorage.Client
	bucket string
}

// NewGCSStore builds the Google Cloud Storage backend. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS or ambient application-default credentials.
func NewGCSStore(ctx context.Context, bucket string) (BlobStore, error) {
	var client *gcstorage.Client
	var err error

	if credPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credPath != "" {
		client, err = gcstorage.NewClient(ctx, option.WithCredentialsFile(credPath))
	} else {
		client, err = gcstorage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &gcsStore{client: client, bucket: bucket}, nil
}

func (s *gcsStore) Backend() string { return BackendGCS }

func (s *gcsStore) Upload(ctx context.Context, data []byte, key string, opts UploadOptions) (*Location, error) {
	obj := s.client.Bucket(s.bucket).Object(key)
	w := obj.NewWriter(ctx)
	if opts.ContentType != "" {
		w.ContentType = opts.ContentType
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, mapGCSError(err)
	}
	if err := w.Close(); err != nil {
		return nil, mapGCSError(err)
	}

	loc := &Location{
		Backend: BackendGCS,
		Key:     key,
		URL:     fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key),
	}

	// Objects are private; hand out a time-limited signed URL for playback.
	signed, err := s.client.Bucket(s.bucket).SignedURL(key, &gcstorage.SignedURLOptions{
		Scheme:  gcstorage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(time.Hour),
	})
	if err == nil {
		loc.SignedURL = signed
	}

	return loc, nil
}

func (s *gcsStore) Download(ctx context.Context, loc Location) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(loc.Key).NewReader(ctx)
	if err != nil {
		return nil, mapGCSError(err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, mapGCSError(err)
	}
	return data, nil
}

func (s *gcsStore) Delete(ctx context.Context, loc Location) error {
	err := s.client.Bucket(s.bucket).Object(loc.Key).Delete(ctx)
	if err != nil && !errors.Is(err, gcstorage.ErrObjectNotExist) {
		return mapGCSError(err)
	}
	return nil
}

func (s *gcsStore) Exists(ctx context.Context, loc Location) (bool, error) {
	_, err := s.client.Bucket(s.bucket).Object(loc.Key).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gcstorage.ErrObjectNotExist) {
		return false, nil
	}
	return false, mapGCSError(err)
}

func mapGCSError(err error) error {
	if errors.Is(err, gcstorage.ErrObjectNotExist) {
		return ErrNotFound
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusForbidden, http.StatusUnauthorized:
			return ErrPermissionDenied
		}
	}
	return err
}
