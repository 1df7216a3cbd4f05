package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/asset-maintenance/internal/api/dto"
	"github.com/spec-kit/asset-maintenance/internal/storage"
	apperrors "github.com/spec-kit/asset-maintenance/pkg/util/errorutil"
)

// UploadsHandler stores ticket photos and returns references for update-work.
type UploadsHandler struct {
	files    storage.FileStore
	maxBytes int64
	logger   *zap.Logger
}

// NewUploadsHandler constructs handler. maxMB <= 0 defaults to 10.
func NewUploadsHandler(files storage.FileStore, maxMB int, logger *zap.Logger) *UploadsHandler {
	if maxMB <= 0 {
		maxMB = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadsHandler{files: files, maxBytes: int64(maxMB) << 20, logger: logger}
}

// UploadPhotos POST /uploads/photos (multipart field "photos").
func (h *UploadsHandler) UploadPhotos(c *fiber.Ctx) error {
	if _, err := actorFrom(c); err != nil {
		return err
	}
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidationError("multipart form required", nil)
	}
	files := form.File["photos"]
	if len(files) == 0 {
		return apperrors.NewValidationError("at least one photo required", map[string]any{"field": "photos"})
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return apperrors.NewValidationError("only images are accepted", map[string]any{"file": fh.Filename})
		}
		if fh.Size > h.maxBytes {
			return apperrors.NewValidationError("file too large", map[string]any{"file": fh.Filename, "max_bytes": h.maxBytes})
		}
		f, err := fh.Open()
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		path, err := h.files.Save(c.UserContext(), fh.Filename, f, fh.Size, contentType)
		_ = f.Close()
		if err != nil {
			h.logger.Error("photo upload failed", zap.String("file", fh.Filename), zap.Error(err))
			return apperrors.NewInternalError(err)
		}
		paths = append(paths, path)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.UploadResponse{Paths: paths}})
}
