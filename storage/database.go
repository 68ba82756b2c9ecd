package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podgen/podcast-generator-backend/models"
)

// GridFS chunk size convention.
const chunkSize = 255 * 1024

type databaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore stores blobs inside the relational database, split into
// fixed-size chunk rows. It is the default backend so the service runs with
// nothing but a database connection.
func NewDatabaseStore(db *gorm.DB) BlobStore {
	return &databaseStore{db: db}
}

func (s *databaseStore) Backend() string { return BackendGridFS }

func (s *databaseStore) Upload(ctx context.Context, data []byte, key string, opts UploadOptions) (*Location, error) {
	file := models.StoredFile{
		ID:          uuid.New(),
		Filename:    opts.Filename,
		ContentType: opts.ContentType,
		Size:        int64(len(data)),
		OwnerID:     opts.OwnerID,
	}
	if file.Filename == "" {
		file.Filename = key
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&file).Error; err != nil {
			return err
		}
		for seq, off := 0, 0; off < len(data); seq, off = seq+1, off+chunkSize {
			end := off + chunkSize
			if end > len(data) {
				end = len(data)
			}
			chunk := models.StoredFileChunk{
				StoredFileID: file.ID,
				Seq:          seq,
				Data:         data[off:end],
			}
			if err := tx.Create(&chunk).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	id := file.ID.String()
	return &Location{
		Backend: BackendGridFS,
		Key:     id,
		URL:     "/api/documents/file/" + id,
	}, nil
}

func (s *databaseStore) Download(ctx context.Context, loc Location) ([]byte, error) {
	file, err := s.metadata(ctx, loc.Key)
	if err != nil {
		return nil, err
	}

	var chunks []models.StoredFileChunk
	if err := s.db.WithContext(ctx).
		Where("stored_file_id = ?", file.ID).
		Order("seq ASC").
		Find(&chunks).Error; err != nil {
		return nil, err
	}

	data := make([]byte, 0, file.Size)
	for _, chunk := range chunks {
		data = append(data, chunk.Data...)
	}
	return data, nil
}

func (s *databaseStore) Delete(ctx context.Context, loc Location) error {
	id, err := uuid.Parse(loc.Key)
	if err != nil {
		return nil // malformed key cannot reference a stored object
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stored_file_id = ?", id).Delete(&models.StoredFileChunk{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.StoredFile{}, "id = ?", id).Error
	})
}

func (s *databaseStore) Exists(ctx context.Context, loc Location) (bool, error) {
	_, err := s.metadata(ctx, loc.Key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Metadata returns the stored file row for a key, for handlers that need the
// filename and content type when streaming.
func (s *databaseStore) Metadata(ctx context.Context, key string) (*models.StoredFile, error) {
	return s.metadata(ctx, key)
}

func (s *databaseStore) metadata(ctx context.Context, key string) (*models.StoredFile, error) {
	id, err := uuid.Parse(key)
	if err != nil {
		return nil, ErrNotFound
	}
	var file models.StoredFile
	if err := s.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// FileMetadata looks up stored-file metadata on the gridfs backend.
func FileMetadata(ctx context.Context, key string) (*models.StoredFile, error) {
	s, err := ForBackend(BackendGridFS)
	if err != nil {
		return nil, err
	}
	dbs, ok := s.(*databaseStore)
	if !ok {
		return nil, ErrUnknownBackend
	}
	return dbs.Metadata(ctx, key)
}
