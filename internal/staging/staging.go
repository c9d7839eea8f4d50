// Package staging manages the local Parquet staging area, one directory per
// genre, with an optional mirror to object storage.
package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adaptive-ads/imdb-ingest/internal/objectstore"
	"github.com/adaptive-ads/imdb-ingest/internal/table"
)

// Stager writes staged artifacts under a fixed root directory.
type Stager struct {
	root   string
	mirror objectstore.Store
	bucket string
}

// NewStager creates a stager rooted at root.
func NewStager(root string) *Stager {
	return &Stager{root: root}
}

// WithMirror returns a copy of the stager that also uploads each staged
// artifact to bucket in the given store.
func (s *Stager) WithMirror(store objectstore.Store, bucket string) *Stager {
	return &Stager{root: s.root, mirror: store, bucket: bucket}
}

// ArtifactPath returns the staging location for a genre artifact:
// {root}/{genre}/{name}.
func (s *Stager) ArtifactPath(genre, name string) string {
	return filepath.Join(s.root, genre, name)
}

// Stage serializes tbl to {root}/{genre}/{name} as Parquet, creating the
// genre directory if needed and replacing any previous file wholesale, so a
// partial file left by a killed attempt is discarded on the next run. When a
// mirror is configured the artifact bytes are uploaded to
// {bucket}/{genre}/{name} afterwards; a mirror failure fails the stage.
func (s *Stager) Stage(ctx context.Context, genre string, tbl *table.Table, name string) (string, error) {
	if genre == "" {
		return "", fmt.Errorf("genre is required")
	}
	dir := filepath.Join(s.root, genre)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := tbl.WriteParquet(path); err != nil {
		return "", fmt.Errorf("stage %s: %w", genre, err)
	}

	if s.mirror != nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read staged artifact: %w", err)
		}
		if err := s.mirror.EnsureBucket(ctx, s.bucket); err != nil {
			return "", fmt.Errorf("mirror %s: %w", genre, err)
		}
		key := genre + "/" + name
		if err := s.mirror.PutObject(ctx, s.bucket, key, data); err != nil {
			return "", fmt.Errorf("mirror %s: %w", genre, err)
		}
	}

	return path, nil
}
