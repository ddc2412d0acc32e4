// Package storage persists uploaded audio blobs to a local directory tree
// and computes the URLs they are served back under.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// AudioStore writes audio payloads under a durable directory using
// collision-resistant names that preserve the original file extension.
type AudioStore struct {
	dir       string
	urlPrefix string
	log       *slog.Logger
}

// NewAudioStore creates the blob directory if needed and returns a store
// serving files under urlPrefix.
func NewAudioStore(dir, urlPrefix string, log *slog.Logger) (*AudioStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory %s: %w", dir, err)
	}
	return &AudioStore{
		dir:       dir,
		urlPrefix: urlPrefix,
		log:       log.With("component", "audio_store"),
	}, nil
}

// Dir returns the directory blobs are written to.
func (s *AudioStore) Dir() string {
	return s.dir
}

// URLPrefix returns the URL path prefix blobs are served under.
func (s *AudioStore) URLPrefix() string {
	return s.urlPrefix
}

// Save durably writes the audio payload under a freshly generated name and
// returns the URL path it can be fetched from.
func (s *AudioStore) Save(data []byte, originalName string) (string, error) {
	name := fmt.Sprintf("audio_%s%s", uuid.New().String(), filepath.Ext(originalName))

	dst := filepath.Join(s.dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		s.log.Error("failed to write audio blob", "path", dst, "error", err)
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	url := path.Join(s.urlPrefix, name)
	s.log.Debug("audio blob stored", "path", dst, "url", url, "size", len(data))
	return url, nil
}
