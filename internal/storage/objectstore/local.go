// Package objectstore stores uploaded product images on local disk and
// serves them under a public base URL.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mercadito/internal/core/apperror"
	"mercadito/internal/core/id"
	"mercadito/internal/domain"
	"mercadito/pkg/logger"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// LocalStore writes files under Dir and returns BaseURL-prefixed
// public URLs. Names are rewritten to a generated id plus the original
// extension, so uploads never collide or traverse paths.
type LocalStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

var _ domain.FileStore = (*LocalStore)(nil)

// NewLocalStore creates the upload directory if missing.
func NewLocalStore(dir, baseURL string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

// UploadFile stores the file and returns its public URL. Files over
// the size limit or with an unexpected extension are rejected before
// anything is written.
func (s *LocalStore) UploadFile(ctx context.Context, name string, size int64, r io.Reader) (string, error) {
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", apperror.NewValidation(
			fmt.Sprintf("El archivo supera el tamaño máximo permitido (%d MB).", s.maxBytes/(1<<20))).
			WithDetail("size", size)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return "", apperror.NewValidation("Formato de imagen no permitido.").
			WithDetail("extension", ext)
	}

	fileName := id.New().String() + ext
	path := filepath.Join(s.dir, fileName)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", apperror.NewUpload(err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		os.Remove(path)
		return "", apperror.NewUpload(err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		os.Remove(path)
		return "", apperror.NewValidation("El archivo supera el tamaño máximo permitido.")
	}

	url := s.baseURL + "/" + fileName
	logger.Info(ctx, "archivo subido", "name", name, "stored", fileName, "bytes", written)
	return url, nil
}
