package s3

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/captionmap/internal/config"
)

func validConfig() config.StorageConfig {
	return config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "captions",
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *config.StorageConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*config.StorageConfig) {}},
		{name: "no endpoint", mutate: func(c *config.StorageConfig) { c.Endpoint = " " }, wantErr: "endpoint"},
		{name: "no access key", mutate: func(c *config.StorageConfig) { c.AccessKey = "" }, wantErr: "access key"},
		{name: "no bucket", mutate: func(c *config.StorageConfig) { c.Bucket = "" }, wantErr: "bucket"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(&cfg)

			store, err := New(cfg)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "captions", store.Bucket())
			assert.Equal(t, defaultRegion, store.region)
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	got, err := normalizeKey("  /captionmap//run-1/./mappings.json ")
	require.NoError(t, err)
	assert.Equal(t, "captionmap/run-1/mappings.json", got)

	_, err = normalizeKey(" / ")
	require.Error(t, err)
}

func TestContentType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "application/json", contentType("a/mappings.JSON"))
	assert.Equal(t, "text/plain; charset=utf-8", contentType("a/metrics.prom"))
	assert.Equal(t, "application/octet-stream", contentType("a/blob"))
}

func TestNilStore(t *testing.T) {
	t.Parallel()

	var s *Store
	require.ErrorIs(t, s.Put(context.Background(), "k", nil), errNilStore)

	_, err := s.Get(context.Background(), "k")
	require.ErrorIs(t, err, errNilStore)
}
