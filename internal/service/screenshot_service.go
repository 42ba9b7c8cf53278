package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"trading-journal/config"
	"trading-journal/internal/dto"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/storage"

	"github.com/google/uuid"
)

type ScreenshotService interface {
	// Upload stores the image under path plus an extension and returns its public URL.
	Upload(ctx context.Context, path string, upload dto.UploadScreenshotRequest) (string, error)
	// UploadForUser stores a free standing image in the user's upload folder.
	UploadForUser(ctx context.Context, userID uuid.UUID, upload dto.UploadScreenshotRequest) (string, error)
	// CheckOwnership rejects URLs that point into the store but outside the user's folder.
	CheckOwnership(userID uuid.UUID, field, rawURL string) error
	// Remove deletes an image previously uploaded for userID. URLs outside the store are ignored.
	Remove(ctx context.Context, userID uuid.UUID, rawURL string) error
}

type screenshotService struct {
	cfg   *config.Config
	log   *logger.Logger
	store storage.ObjectStore
}

func NewScreenshotService(cfg *config.Config, log *logger.Logger, store storage.ObjectStore) ScreenshotService {
	return &screenshotService{cfg: cfg, log: log, store: store}
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (s *screenshotService) Upload(ctx context.Context, path string, upload dto.UploadScreenshotRequest) (string, error) {
	if len(upload.Content) == 0 {
		return "", newValidationError("file", "is empty")
	}
	if limit := s.cfg.Storage.MaxUploadBytes; limit > 0 && int64(len(upload.Content)) > limit {
		return "", newValidationError("file", "exceeds %d bytes", limit)
	}

	// trust the bytes, not the client supplied header
	contentType := http.DetectContentType(upload.Content)
	if !strings.HasPrefix(contentType, "image/") {
		return "", newValidationError("file", "must be an image")
	}

	url, err := s.store.Upload(ctx, path+imageExtensions[contentType], contentType, upload.Content)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to upload screenshot", logger.ErrorField(err), logger.StringField("path", path))
		return "", fmt.Errorf("failed to upload screenshot: %w", err)
	}

	s.log.InfoContext(ctx, "Screenshot uploaded", logger.StringField("path", path), logger.IntField("bytes", len(upload.Content)))
	return url, nil
}

func (s *screenshotService) UploadForUser(ctx context.Context, userID uuid.UUID, upload dto.UploadScreenshotRequest) (string, error) {
	return s.Upload(ctx, fmt.Sprintf("%s/uploads/%s", userID, uuid.NewString()), upload)
}

func (s *screenshotService) CheckOwnership(userID uuid.UUID, field, rawURL string) error {
	path, stored := s.storedPath(rawURL)
	if stored && !ownedPath(userID, path) {
		return newValidationError(field, "must be one of your uploads")
	}
	return nil
}

func (s *screenshotService) Remove(ctx context.Context, userID uuid.UUID, rawURL string) error {
	path, stored := s.storedPath(rawURL)
	if !stored {
		return nil
	}
	if !ownedPath(userID, path) {
		s.log.WarnContext(ctx, "Refusing to delete screenshot outside user folder",
			logger.StringField("user_id", userID.String()), logger.StringField("path", path))
		return ErrForeignScreenshot
	}
	if err := s.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete screenshot: %w", err)
	}
	return nil
}

// storedPath returns the object path of a URL served by the store.
func (s *screenshotService) storedPath(rawURL string) (string, bool) {
	prefix := s.store.PublicURL("")
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(rawURL, prefix), true
}

func ownedPath(userID uuid.UUID, path string) bool {
	unescaped, err := url.PathUnescape(path)
	if err != nil || strings.Contains(unescaped, "..") || strings.Contains(unescaped, "\\") {
		return false
	}
	return strings.HasPrefix(unescaped, userID.String()+"/") && strings.HasPrefix(path, userID.String()+"/")
}
