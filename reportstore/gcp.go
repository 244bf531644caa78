package reportstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
)

type gcpStore struct {
	logger zerolog.Logger
	bucket string
	client *storage.Client
	creds  *google.Credentials
}

func NewGCPStore(
	logger zerolog.Logger, client *storage.Client, creds *google.Credentials, bucket string,
) *gcpStore {
	return &gcpStore{
		bucket: bucket,
		client: client,
		logger: logger,
		creds:  creds,
	}
}

func (s *gcpStore) Put(ctx context.Context, key string, r io.Reader) (Resource, error) {
	s.logger.Debug().
		Str("file", key).
		Str("project", s.creds.ProjectID).
		Msgf("creating new file")
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = "application/json"
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return nil, err
	}
	if err := wc.Close(); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("file", key).Msgf("gcp file creation complete")
	return &gcpResource{store: s, key: key}, nil
}

type gcpResource struct {
	store *gcpStore
	key   string
}

func (r *gcpResource) Location() string {
	return fmt.Sprintf("gs://%s/%s", r.store.bucket, r.key)
}

func (r *gcpResource) Reader(ctx context.Context) (io.ReadCloser, error) {
	return r.store.client.Bucket(r.store.bucket).Object(r.key).NewReader(ctx)
}
