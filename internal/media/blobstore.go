// Package media abstracts the binary store the engine deletes against. The
// engine only ever needs a delete primitive; uploads go straight from clients
// to the CDN and arrive here as opaque media ids.
package media

import (
	"context"

	"github.com/sirupsen/logrus"
)

// BlobStore deletes stored binaries by id. Deletion is best-effort: the
// caller logs failures and moves on, it never blocks a structural delete.
type BlobStore interface {
	Delete(ctx context.Context, mediaIDs []string) error
}

// LogStore is a BlobStore that records deletions without talking to a real
// backend. Used in development and as the wiring default until a CDN-backed
// implementation is configured.
type LogStore struct {
	log *logrus.Logger
}

// NewLogStore creates a LogStore
func NewLogStore(log *logrus.Logger) *LogStore {
	return &LogStore{log: log}
}

// Delete logs the ids that would be removed from the blob backend
func (s *LogStore) Delete(_ context.Context, mediaIDs []string) error {
	if len(mediaIDs) == 0 {
		return nil
	}
	s.log.WithFields(logrus.Fields{
		"count":     len(mediaIDs),
		"media_ids": mediaIDs,
	}).Info("blob delete requested")
	return nil
}
