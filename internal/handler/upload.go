package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/usedgoods/marketplace/internal/service"
	"github.com/usedgoods/marketplace/internal/storage"
	"github.com/usedgoods/marketplace/internal/validation"
)

const multipartMemory = 8 << 20 // 8 MiB

// Uploader turns multipart image fields into staged temp handles.
type Uploader struct {
	storage  storage.Storage
	maxFiles int
	maxBytes int64
}

func NewUploader(storage storage.Storage, maxFiles int, maxBytes int64) *Uploader {
	return &Uploader{
		storage:  storage,
		maxFiles: maxFiles,
		maxBytes: maxBytes,
	}
}

func (u *Uploader) parse(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(u.maxFiles)*u.maxBytes+multipartMemory)
	err := r.ParseMultipartForm(multipartMemory)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("%w: upload too large", service.ErrValidation)
		}
		return fmt.Errorf("%w: invalid multipart form: %v", service.ErrValidation, err)
	}
	return nil
}

// stage validates every file of field and writes it to the staging area.
// Nothing is staged unless every file passes validation; on a write failure
// the handles staged so far are discarded.
func (u *Uploader) stage(ctx context.Context, form *multipart.Form, field string) ([]string, error) {
	headers := form.File[field]
	if len(headers) > u.maxFiles {
		return nil, fmt.Errorf("%w: at most %d files per request", service.ErrValidation, u.maxFiles)
	}

	for _, header := range headers {
		err := validation.ValidateImage(header, u.maxBytes)
		if err != nil {
			if errors.Is(err, validation.ErrInvalidImage) {
				return nil, fmt.Errorf("%w: %v", service.ErrValidation, err)
			}
			return nil, err
		}
	}

	handles := make([]string, 0, len(headers))
	for _, header := range headers {
		handle, err := u.stageOne(ctx, header)
		if err != nil {
			u.discard(ctx, handles)
			return nil, err
		}
		handles = append(handles, handle)
	}

	return handles, nil
}

func (u *Uploader) stageOne(ctx context.Context, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close file", "error", closeErr)
		}
	}()

	return u.storage.Stage(ctx, header.Filename, file)
}

func (u *Uploader) discard(ctx context.Context, handles []string) {
	for _, h := range handles {
		err := u.storage.Discard(ctx, h)
		if err != nil {
			slog.Error("failed to discard staged upload", "error", err, "handle", h)
		}
	}
}
