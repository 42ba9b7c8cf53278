// Package storage uploads trade screenshots to an S3 style object store that
// speaks the Supabase storage REST dialect.
package storage

import (
	"context"
	"fmt"
	"strings"

	"trading-journal/config"
	"trading-journal/pkg/httpclient"
)

type ObjectStore interface {
	Upload(ctx context.Context, path string, contentType string, content []byte) (string, error)
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}

type objectStore struct {
	cfg    config.Storage
	client httpclient.HTTPClient
}

func New(cfg config.Storage) ObjectStore {
	return &objectStore{
		cfg:    cfg,
		client: httpclient.New(strings.TrimRight(cfg.BaseURL, "/"), cfg.Timeout, cfg.ServiceKey),
	}
}

// Upload stores content at path, replacing any previous object, and returns its public URL.
func (s *objectStore) Upload(ctx context.Context, path string, contentType string, content []byte) (string, error) {
	resp, err := s.client.Post(ctx, s.objectPath(path), content, map[string]string{
		"Content-Type": contentType,
		"x-upsert":     "true",
	}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("failed to upload object %s: status %d: %s", path, resp.StatusCode, string(resp.Body))
	}
	return s.PublicURL(path), nil
}

func (s *objectStore) Delete(ctx context.Context, path string) error {
	resp, err := s.client.Delete(ctx, s.objectPath(path), nil, nil)
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("failed to delete object %s: status %d", path, resp.StatusCode)
	}
	return nil
}

func (s *objectStore) PublicURL(path string) string {
	base := s.cfg.PublicURL
	if base == "" {
		base = s.cfg.BaseURL
	}
	return fmt.Sprintf("%s/object/public/%s/%s", strings.TrimRight(base, "/"), s.cfg.Bucket, strings.TrimLeft(path, "/"))
}

func (s *objectStore) objectPath(path string) string {
	return fmt.Sprintf("/object/%s/%s", s.cfg.Bucket, strings.TrimLeft(path, "/"))
}
