// Package storage keeps movie poster files either on a local filesystem or
// in an S3 compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrNotExist = errors.New("poster does not exist")

// Object is an opened poster. The caller must close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

type PosterStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Store(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (*Object, error)
	// Delete removes name. A missing file is not an error.
	Delete(ctx context.Context, name string) error
}

type Options struct {
	Type      string // local or s3
	PosterDir string
	S3        S3Options
}

// New builds the store selected by o.Type
func New(ctx context.Context, o Options) (PosterStore, error) {
	switch o.Type {
	case "", "local":
		return NewLocal(nil, o.PosterDir)
	case "s3":
		return NewS3(ctx, o.S3)
	}

	return nil, fmt.Errorf("unknown storage type %q", o.Type)
}
