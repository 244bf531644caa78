package reportstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

type localStore struct {
	logger   zerolog.Logger
	basePath string
}

func NewLocalStore(logger zerolog.Logger, basePath string) (*localStore, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "error creating report directory %s", basePath)
	}
	return &localStore{
		logger:   logger,
		basePath: basePath,
	}, nil
}

func (l *localStore) Put(ctx context.Context, key string, r io.Reader) (Resource, error) {
	p := filepath.Join(l.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return nil, err
	}
	logger := l.logger.With().Str("path", p).Logger()
	logger.Debug().Msgf("creating file")
	f, err := os.Create(p)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(f, r); err != nil {
		return nil, errors.CombineErrors(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	logger.Debug().Msgf("wrote file")
	return &localResource{path: p}, nil
}

type localResource struct {
	path string
}

func (l *localResource) Location() string {
	return l.path
}

func (l *localResource) Reader(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(l.path)
}
