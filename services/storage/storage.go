package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"easybook/models"
	"easybook/utils"

	"go.uber.org/zap"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func folderFor(kind models.UploadKind, ownerID string) string {
	return fmt.Sprintf("%s/%ss/%s", rootFolder, kind, ownerID)
}

func (s *DefaultStorageService) Upload(ctx context.Context, actor models.Actor, req UploadRequest) (*models.Upload, error) {
	if s.Store == nil {
		return nil, utils.NewUpstreamError("File storage is not configured", nil)
	}
	if !req.Kind.IsValid() {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: "kind", Message: "kind must be one of service_image completion_photo profile_image"})
	}
	if req.Kind != models.UploadProfileImage && actor.Role != models.RoleProvider && !actor.IsAdmin() {
		return nil, utils.NewForbiddenError("Only providers can upload service media")
	}
	if req.Body == nil || req.Size == 0 {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: "file", Message: "file is required"})
	}
	if req.Size > s.MaxBytes {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: "file", Message: fmt.Sprintf("file must be at most %d MB", s.MaxBytes>>20)})
	}

	// Sniff the content instead of trusting the client's filename or header.
	body := bufio.NewReaderSize(req.Body, 512)
	head, err := body.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, utils.NewValidationError("Failed to read upload")
	}
	contentType := http.DetectContentType(head)
	if !allowedImageTypes[contentType] {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: "file", Message: "only jpeg, png, gif and webp images are allowed"})
	}

	upload, err := s.Store.Put(ctx, io.LimitReader(body, s.MaxBytes), folderFor(req.Kind, actor.ID), req.Filename)
	if err != nil {
		utils.GetLogger().Error("Upload failed", zap.String("userId", actor.ID), zap.String("kind", string(req.Kind)), zap.Error(err))
		return nil, utils.NewUpstreamError("Failed to upload file", err)
	}
	utils.GetLogger().Info("File uploaded", zap.String("userId", actor.ID), zap.String("publicId", upload.PublicID))
	return upload, nil
}

// Delete removes an asset. Owners may only remove assets in their own folders.
func (s *DefaultStorageService) Delete(ctx context.Context, actor models.Actor, publicID string) error {
	if s.Store == nil {
		return utils.NewUpstreamError("File storage is not configured", nil)
	}
	publicID = strings.Trim(publicID, "/")
	if publicID == "" {
		return utils.NewValidationError("Public id is required")
	}
	if !actor.IsAdmin() && !ownedBy(publicID, actor.ID) {
		return utils.NewForbiddenError("Not authorized to delete this file")
	}
	if err := s.Store.Remove(ctx, publicID); err != nil {
		return utils.NewUpstreamError("Failed to delete file", err)
	}
	return nil
}

func ownedBy(publicID, userID string) bool {
	parts := strings.Split(publicID, "/")
	return len(parts) == 4 && parts[0] == rootFolder && parts[2] == userID
}
