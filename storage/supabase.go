package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	supabase "github.com/supabase-community/storage-go"
)

type supabaseStore struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *supabase.Client
	http    *http.Client
}

// NewSupabaseStore builds the Supabase Storage backend. Uploads go through
// the storage-go client; download/delete/exists use the REST endpoints
// directly with the service key.
func NewSupabaseStore(baseURL, apiKey string) BlobStore {
	bucket := os.Getenv("SUPABASE_BUCKET")
	if bucket == "" {
		bucket = "uploads"
	}
	return &supabaseStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		bucket:  bucket,
		client:  supabase.NewClient(strings.TrimRight(baseURL, "/")+"/storage/v1", apiKey, nil),
		http:    &http.Client{},
	}
}

func (s *supabaseStore) Backend() string { return BackendSupabase }

func (s *supabaseStore) Upload(ctx context.Context, data []byte, key string, opts UploadOptions) (*Location, error) {
	contentType := opts.ContentType
	options := supabase.FileOptions{}
	if contentType != "" {
		options.ContentType = &contentType
	}

	if _, err := s.client.UploadFile(s.bucket, key, bytes.NewBuffer(data), options); err != nil {
		return nil, err
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key)
	return &Location{Backend: BackendSupabase, Key: key, URL: publicURL, SignedURL: publicURL}, nil
}

func (s *supabaseStore) Download(ctx context.Context, loc Location) ([]byte, error) {
	resp, err := s.do(ctx, http.MethodGet, loc.Key)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := s.checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (s *supabaseStore) Delete(ctx context.Context, loc Location) error {
	resp, err := s.do(ctx, http.MethodDelete, loc.Key)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil // already gone
	}
	return s.checkStatus(resp)
}

func (s *supabaseStore) Exists(ctx context.Context, loc Location) (bool, error) {
	resp, err := s.do(ctx, http.MethodHead, loc.Key)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err := s.checkStatus(resp); err != nil {
		return false, err
	}
	return true, nil
}

func (s *supabaseStore) do(ctx context.Context, method, key string) (*http.Response, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, key)
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("apikey", s.apiKey)
	return s.http.Do(req)
}

func (s *supabaseStore) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return ErrPermissionDenied
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("supabase storage: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
