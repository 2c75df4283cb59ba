package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"bulkwala/internal/store"
)

const maxUploadBytes = 5 << 20 // 5 MB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var errImageRequired = fmt.Errorf("image is required: %w", store.ErrValidation)

// parseForm reads a multipart body. Plain urlencoded forms are accepted too
// so that updates without a file work from simple clients.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return fmt.Errorf("unable to parse form, file size limit is 5MB: %w", store.ErrValidation)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("unable to parse form: %w", store.ErrValidation)
	}
	return nil
}

// formImage returns the image under field, or nil if none was sent. The
// content type is sniffed from the bytes, not taken from the client.
func formImage(r *http.Request, field string) (multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if header.Size > maxUploadBytes {
		file.Close()
		return nil, fmt.Errorf("image exceeds 5MB: %w", store.ErrValidation)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		file.Close()
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if contentType := http.DetectContentType(head[:n]); !allowedImageTypes[contentType] {
		file.Close()
		return nil, fmt.Errorf("unsupported image type %s: %w", contentType, store.ErrValidation)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("rewind %s: %w", field, err)
	}
	return file, nil
}

// formString returns the trimmed value and whether the key was sent at all.
func formString(r *http.Request, key string) (string, bool) {
	if _, ok := r.Form[key]; !ok {
		if r.MultipartForm == nil {
			return "", false
		}
		if _, ok := r.MultipartForm.Value[key]; !ok {
			return "", false
		}
	}
	return strings.TrimSpace(r.FormValue(key)), true
}
