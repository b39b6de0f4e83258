package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrInvalidMimeType = errors.New("file type not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// MaxImageSize caps uploaded card images and cancel-proof shots.
const MaxImageSize = 8 << 20 // 8 MiB

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// ValidateImage reads the upload in full, checks size and sniffs the MIME
// type from magic bytes. Returns the bytes and detected content type.
func ValidateImage(reader io.Reader) ([]byte, string, error) {
	limitedReader := io.LimitReader(reader, MaxImageSize+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil, "", ErrEmptyFile
	}
	if int64(len(data)) > MaxImageSize {
		return nil, "", ErrFileTooLarge
	}

	mimeType := http.DetectContentType(data)
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}

	for _, t := range allowedImageTypes {
		if t == mimeType {
			return data, mimeType, nil
		}
	}
	return nil, "", ErrInvalidMimeType
}
