// Package reportstore persists serialized validation reports.
package reportstore

import (
	"context"
	"io"
	"regexp"
	"strings"
)

type Store interface {
	// Put writes the contents of r under key.
	Put(ctx context.Context, key string, r io.Reader) (Resource, error)
}

type Resource interface {
	// Location is where the resource can be found, e.g. a file path or
	// s3:// URL.
	Location() string
	Reader(ctx context.Context) (io.ReadCloser, error)
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ReportKey returns the key a run's report is stored under.
func ReportKey(suite string, runID string) string {
	s := strings.Trim(unsafeKeyChars.ReplaceAllString(suite, "_"), "_")
	if s == "" {
		s = "default"
	}
	return s + "/" + runID + ".json"
}
