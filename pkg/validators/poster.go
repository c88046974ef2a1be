package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileNameInvalid     = errors.New("invalid file name")
	ErrFileTypeUnsupported = errors.New("unsupported file type, posters must be images")
	ErrNoFile              = errors.New("no file provided")
)

const maxFileNameSize = 255

// PosterValidator checks a multipart poster upload and returns the opened
// file rewound to the start together with its sniffed content type. The
// returned status code is meant to be sent back as is when err != nil.
func PosterValidator(fh *multipart.FileHeader, maxSize int64) (int, multipart.File, string, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, "", ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, "", ErrFileNameTooLong
	}

	if err := PosterNameValidator(fh.Filename); err != nil {
		return http.StatusBadRequest, nil, "", err
	}

	if maxSize > 0 && fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	// Header first since it's cheap, then sniff the real content
	ct := fh.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "image/") && ct != "application/octet-stream" {
		return http.StatusBadRequest, nil, "", ErrFileTypeUnsupported
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	if !strings.HasPrefix(mime.String(), "image/") {
		f.Close()
		return http.StatusBadRequest, nil, "", ErrFileTypeUnsupported
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	return 0, f, mime.String(), nil
}

// PosterNameValidator rejects names that would escape the poster directory
func PosterNameValidator(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrFileNameInvalid
	}

	if filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return ErrFileNameInvalid
	}

	return nil
}
