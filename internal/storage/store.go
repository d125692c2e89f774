// Package storage keeps the bytes of workspace attachments. Only the
// resulting URL is recorded by the collabo workflow.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/connecta/collabo-backend/config"
)

// Object describes an upload.
type Object struct {
	WorkspaceID string
	Name        string
	ContentType string
	Size        int64
}

// FileStore saves an object and returns the URL it can be fetched from.
type FileStore interface {
	Save(ctx context.Context, obj Object, r io.Reader) (string, error)
}

// New builds the FileStore selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Backend {
	case config.FileStorageS3:
		return NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.PublicBaseURL)
	case config.FileStorageLocal, "":
		return NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown file storage backend %q", cfg.Backend)
	}
}

// objectKey is <workspace>/<uuid><ext>; client supplied names never reach the filesystem.
func objectKey(obj Object) (string, error) {
	if obj.WorkspaceID == "" || strings.ContainsAny(obj.WorkspaceID, `/\.`) {
		return "", fmt.Errorf("invalid workspace id %q", obj.WorkspaceID)
	}
	ext := strings.ToLower(filepath.Ext(path.Base(obj.Name)))
	if len(ext) > 10 {
		ext = ""
	}
	return obj.WorkspaceID + "/" + uuid.New().String() + ext, nil
}
