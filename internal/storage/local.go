package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const defaultPosterDir = "posters"

// LocalStore keeps posters in a single flat directory
type LocalStore struct {
	fs  afero.Fs
	dir string
}

// NewLocal creates dir on fs if needed. A nil fs means the OS filesystem.
func NewLocal(fs afero.Fs, dir string) (*LocalStore, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if dir == "" {
		dir = defaultPosterDir
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create poster directory, %w", err)
	}

	zap.L().Debug("Local poster store ready", zap.String("dir", dir))

	return &LocalStore{fs: fs, dir: dir}, nil
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *LocalStore) Exists(_ context.Context, name string) (bool, error) {
	return afero.Exists(s.fs, s.path(name))
}

// Store writes r to name, failing if name is already taken
func (s *LocalStore) Store(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	f, err := s.fs.OpenFile(s.path(name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create poster file, %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		s.fs.Remove(s.path(name))
		return fmt.Errorf("failed to write poster file, %w", err)
	}

	return f.Close()
}

func (s *LocalStore) Open(_ context.Context, name string) (*Object, error) {
	f, err := s.fs.Open(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotExist
		}

		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}

	return &Object{
		Body:        f,
		Size:        stat.Size(),
		ContentType: ct,
	}, nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := s.fs.Remove(s.path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete poster file, %w", err)
	}

	return nil
}
