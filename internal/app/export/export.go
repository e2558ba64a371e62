// Package export serializes a caption mapping into the artifact consumed by
// the training pipeline:
//
//	[
//	  {"image": "data/test/BNLIT/1.png", "captions": ["..."]}
//	]
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/heartmarshall/captionmap/internal/domain"
)

// ArtifactFile is the object name of an uploaded mapping artifact.
const ArtifactFile = "mappings.json"

// Item is one artifact entry.
type Item struct {
	Image    string   `json:"image"`
	Captions []string `json:"captions"`
}

// ArtifactStore stores artifact bytes under a key.
type ArtifactStore interface {
	Put(ctx context.Context, key string, content []byte) error
}

// Items converts m into artifact entries sorted by absolute image path.
// With a non-empty root, image paths are made relative to it; a path that
// cannot be expressed relative to root is kept absolute.
func Items(m domain.CaptionMapping, root string) []Item {
	items := make([]Item, 0, len(m))
	for _, p := range m.Paths() {
		items = append(items, Item{Image: relativeTo(root, p), Captions: m[p]})
	}
	return items
}

func relativeTo(root, p string) string {
	if root == "" {
		return p
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(absRoot, p)
	if err != nil {
		return p
	}
	return rel
}

// Encode renders items as indented JSON without HTML escaping, so Bengali
// and other non-ASCII captions stay readable.
func Encode(items []Item) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteJSON writes the artifact for m to path, creating parent directories.
func WriteJSON(path string, m domain.CaptionMapping, root string) error {
	data, err := Encode(Items(m, root))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// ObjectKey returns "<prefix>/<run-id>/mappings.json". An empty prefix is
// omitted.
func ObjectKey(prefix string, runID uuid.UUID) string {
	return path.Join(prefix, runID.String(), ArtifactFile)
}

// Upload stores the artifact for m and returns its object key.
func Upload(ctx context.Context, store ArtifactStore, prefix string, runID uuid.UUID, m domain.CaptionMapping, root string) (string, error) {
	data, err := Encode(Items(m, root))
	if err != nil {
		return "", err
	}
	key := ObjectKey(prefix, runID)
	if err := store.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("upload artifact %s: %w", key, err)
	}
	return key, nil
}
