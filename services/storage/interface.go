package storage

import (
	"context"
	"io"

	"easybook/models"
)

const (
	rootFolder     = "easybook"
	maxUploadBytes = 5 << 20
)

// StorageService stores images for service listings, completion reports and profiles.
type StorageService interface {
	Upload(ctx context.Context, actor models.Actor, req UploadRequest) (*models.Upload, error)
	Delete(ctx context.Context, actor models.Actor, publicID string) error
}

// ObjectStore is the media backend.
type ObjectStore interface {
	Put(ctx context.Context, r io.Reader, folder, filename string) (*models.Upload, error)
	Remove(ctx context.Context, publicID string) error
}

type UploadRequest struct {
	Kind     models.UploadKind
	Filename string
	Size     int64
	Body     io.Reader
}

type DefaultStorageService struct {
	Store    ObjectStore
	MaxBytes int64
}

func NewDefaultStorageService(store ObjectStore) *DefaultStorageService {
	return &DefaultStorageService{Store: store, MaxBytes: maxUploadBytes}
}
