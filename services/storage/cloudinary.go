package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"easybook/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore keeps images in Cloudinary and hands out secure delivery URLs.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cld *cloudinary.Cloudinary) *CloudinaryStore {
	return &CloudinaryStore{cld: cld}
}

func (s *CloudinaryStore) Put(ctx context.Context, r io.Reader, folder, filename string) (*models.Upload, error) {
	unique := true
	overwrite := false
	result, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         folder,
		PublicID:       strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
		UniqueFilename: &unique,
		Overwrite:      &overwrite,
		ResourceType:   "image",
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	if result.PublicID == "" {
		return nil, errors.New("cloudinary upload: no public id returned")
	}
	return &models.Upload{
		PublicID: result.PublicID,
		URL:      result.SecureURL,
		Format:   result.Format,
		Bytes:    result.Bytes,
		Width:    result.Width,
		Height:   result.Height,
	}, nil
}

func (s *CloudinaryStore) Remove(ctx context.Context, publicID string) error {
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: "image"})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", result.Error.Message)
	}
	return nil
}
