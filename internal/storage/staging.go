package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// staging is the local temp area shared by every driver.
type staging struct {
	dir string
}

func newStaging(root string) (*staging, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(abs, "tmp")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &staging{dir: dir}, nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Stage writes r to a uniquely named file. The handle keeps the original
// extension so stored ids stay recognisable.
func (s *staging) Stage(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r == nil {
		return "", fmt.Errorf("reader is required")
	}

	base := unsafeNameChars.ReplaceAllString(filepath.Base(filename), "_")
	if base == "." || base == "_" || base == "" {
		base = "upload"
	}
	handle := uuid.NewString() + "-" + base

	f, err := os.OpenFile(filepath.Join(s.dir, handle), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}

	return handle, nil
}

func (s *staging) Discard(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to discard staged file: %w", err)
	}
	return nil
}

// Staged lists the handles currently waiting in the staging area.
func (s *staging) Staged() ([]string, error) {
	return listFiles(s.dir)
}

func (s *staging) path(handle string) (string, error) {
	if err := ValidateHandle(handle); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, handle), nil
}

// ValidateHandle rejects handles that could escape the storage directories.
func ValidateHandle(handle string) error {
	if strings.TrimSpace(handle) == "" || handle == "." || handle == ".." ||
		strings.ContainsAny(handle, `/\`) || strings.ContainsRune(handle, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
