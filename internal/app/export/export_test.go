package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/captionmap/internal/domain"
)

func sampleMapping(root string) domain.CaptionMapping {
	return domain.CaptionMapping{
		filepath.Join(root, "data", "b.png"): {"দ্বিতীয় ক্যাপশন", "<b>&"},
		filepath.Join(root, "data", "a.png"): {"first "},
	}
}

func TestItems_SortedAndRelative(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	items := Items(sampleMapping(root), root)

	require.Len(t, items, 2)
	assert.Equal(t, Item{Image: filepath.Join("data", "a.png"), Captions: []string{"first "}}, items[0])
	assert.Equal(t, filepath.Join("data", "b.png"), items[1].Image)
}

func TestItems_NoRootKeepsAbsolute(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	items := Items(sampleMapping(root), "")

	assert.Equal(t, filepath.Join(root, "data", "a.png"), items[0].Image)
}

func TestItems_EmptyMapping(t *testing.T) {
	t.Parallel()

	items := Items(domain.NewCaptionMapping(), "")
	assert.NotNil(t, items)
	assert.Empty(t, items)

	data, err := Encode(items)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestEncode_Unescaped(t *testing.T) {
	t.Parallel()

	data, err := Encode(Items(sampleMapping("/r"), "/r"))
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, "দ্বিতীয় ক্যাপশন")
	assert.Contains(t, s, "<b>&")
	assert.True(t, strings.HasPrefix(s, "[\n  {\n    \"image\": "), s)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := filepath.Join(root, "results", "nested", "mappings.json")

	require.NoError(t, WriteJSON(out, sampleMapping(root), root))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var items []Item
	require.NoError(t, json.Unmarshal(data, &items))
	assert.Equal(t, Items(sampleMapping(root), root), items)
}

func TestObjectKey(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("6f1c2a3e-9a4b-4c1d-8e2f-0a1b2c3d4e5f")

	assert.Equal(t, "runs/6f1c2a3e-9a4b-4c1d-8e2f-0a1b2c3d4e5f/mappings.json", ObjectKey("runs", id))
	assert.Equal(t, "6f1c2a3e-9a4b-4c1d-8e2f-0a1b2c3d4e5f/mappings.json", ObjectKey("", id))
}

type memStore struct {
	objects map[string][]byte
	err     error
}

func (s *memStore) Put(_ context.Context, key string, content []byte) error {
	if s.err != nil {
		return s.err
	}
	s.objects[key] = content
	return nil
}

func TestUpload(t *testing.T) {
	t.Parallel()

	store := &memStore{objects: map[string][]byte{}}
	id := uuid.New()
	m := sampleMapping("/r")

	key, err := Upload(context.Background(), store, "captions", id, m, "/r")
	require.NoError(t, err)
	assert.Equal(t, ObjectKey("captions", id), key)

	want, err := Encode(Items(m, "/r"))
	require.NoError(t, err)
	assert.Equal(t, want, store.objects[key])
}

func TestUpload_StoreError(t *testing.T) {
	t.Parallel()

	boom := errors.New("bucket unavailable")
	store := &memStore{err: boom}

	_, err := Upload(context.Background(), store, "captions", uuid.New(), sampleMapping("/r"), "")
	require.ErrorIs(t, err, boom)
}
