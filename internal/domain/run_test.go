package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCollectionRun_Finish(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	run := NewCollectionRun("/data/test", true, start)

	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, "/data/test", run.BaseDir)
	assert.True(t, run.ValidateImages)

	m := CaptionMapping{"/a.jpg": {"one", "two"}, "/b.jpg": {"three"}}
	run.Finish(m, start.Add(1500*time.Millisecond))

	assert.Equal(t, 2, run.ImageCount)
	assert.Equal(t, 3, run.CaptionCount)
	assert.Equal(t, m.Digest(), run.Digest)
	assert.Equal(t, 1500*time.Millisecond, run.Duration())
}
