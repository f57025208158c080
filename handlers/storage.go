package handlers

import (
	"net/http"

	"easybook/models"
	"easybook/services/storage"
	"easybook/utils"

	"github.com/gin-gonic/gin"
)

// UploadHandler serves /api/uploads.
type UploadHandler struct {
	Storage storage.StorageService
}

func NewUploadHandler(svc storage.StorageService) *UploadHandler {
	return &UploadHandler{Storage: svc}
}

// Upload takes a multipart "file" and a "kind" form field.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("Validation failed", utils.FieldError{Field: "file", Message: "file is required"}))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("Failed to read upload"))
		return
	}
	defer file.Close()

	kind := models.UploadKind(c.DefaultPostForm("kind", string(models.UploadServiceImage)))
	upload, err := h.Storage.Upload(c.Request.Context(), actorFrom(c), storage.UploadRequest{
		Kind:     kind,
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Body:     file,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "File uploaded successfully", upload)
}

func (h *UploadHandler) Delete(c *gin.Context) {
	if err := h.Storage.Delete(c.Request.Context(), actorFrom(c), c.Param("publicId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "File deleted successfully", nil)
}
