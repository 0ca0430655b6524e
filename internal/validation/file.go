package validation

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrInvalidImage marks an upload rejected by ValidateImage.
var ErrInvalidImage = errors.New("invalid image")

// imageTypes maps accepted sniffed content types to their allowed extensions
var imageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
}

// ValidateImage checks an uploaded image's size, sniffed content type and
// extension. The content type is detected from magic numbers, so a renamed
// file cannot pass as an image.
func ValidateImage(header *multipart.FileHeader, maxSize int64) error {
	if header.Size > maxSize {
		return fmt.Errorf("%w: %s is too large (max %d MB)", ErrInvalidImage, header.Filename, maxSize>>20)
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return checkImage(header.Filename, file)
}

func checkImage(filename string, r io.Reader) error {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(r, buffer)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read file: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	exts, ok := imageTypes[detected]
	if !ok {
		return fmt.Errorf("%w: %s has unsupported type %s", ErrInvalidImage, filename, detected)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range exts {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s extension does not match %s", ErrInvalidImage, filename, detected)
}
