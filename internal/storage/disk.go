package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DiskStorage keeps stored files under <root>/uploads and stages uploads under <root>/tmp.
// A stored id is the file name inside the uploads directory.
type DiskStorage struct {
	*staging
	dir     string
	baseURL string
}

func NewDiskStorage(root, baseURL string) (*DiskStorage, error) {
	st, err := newStaging(root)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(filepath.Dir(st.dir), "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &DiskStorage{staging: st, dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save renames the staged file into the uploads directory.
func (d *DiskStorage) Save(ctx context.Context, handle string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, err := d.staging.path(handle)
	if err != nil {
		return "", err
	}
	if err := os.Rename(src, filepath.Join(d.dir, handle)); err != nil {
		return "", fmt.Errorf("failed to move staged file: %w", err)
	}
	return handle, nil
}

func (d *DiskStorage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateHandle(id); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(d.dir, id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (d *DiskStorage) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return listFiles(d.dir)
}

func (d *DiskStorage) URL(id string) string {
	return d.baseURL + "/" + id
}

// Handler serves stored files by id.
func (d *DiskStorage) Handler() http.Handler {
	return http.FileServer(http.Dir(d.dir))
}
