package domain

import (
	"encoding/hex"
	"maps"
	"slices"

	"golang.org/x/crypto/blake2b"
)

// CaptionMapping maps an absolute image path to its captions in the order
// they were encountered. Values are never empty.
type CaptionMapping map[string][]string

// NewCaptionMapping returns an empty mapping.
func NewCaptionMapping() CaptionMapping {
	return make(CaptionMapping)
}

// Add appends a caption for path.
func (m CaptionMapping) Add(path, caption string) {
	m[path] = append(m[path], caption)
}

// Set replaces the captions for path. An empty list is ignored so that
// empty values never enter the mapping.
func (m CaptionMapping) Set(path string, captions []string) {
	if len(captions) == 0 {
		return
	}
	m[path] = captions
}

// Merge copies every entry of other into m. Existing keys are overwritten.
func (m CaptionMapping) Merge(other CaptionMapping) {
	maps.Copy(m, other)
}

// Paths returns the image paths sorted lexicographically.
func (m CaptionMapping) Paths() []string {
	return slices.Sorted(maps.Keys(m))
}

// CaptionCount returns the total number of captions across all images.
func (m CaptionMapping) CaptionCount() int {
	n := 0
	for _, caps := range m {
		n += len(caps)
	}
	return n
}

// Digest returns a hex BLAKE2b-256 fingerprint of the mapping. Two mappings
// with the same paths and captions in the same order have equal digests.
func (m CaptionMapping) Digest() string {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes

	for _, path := range m.Paths() {
		h.Write([]byte(path))
		h.Write([]byte{0x1d})
		for _, caption := range m[path] {
			h.Write([]byte(caption))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}

	return hex.EncodeToString(h.Sum(nil))
}
