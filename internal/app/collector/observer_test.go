package collector

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/captionmap/internal/domain"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestLogObserver(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	obs := NewLogObserver(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	obs.FileCollected("/data/labels.txt", domain.ConventionGenericText, FileStats{Entries: 3, Records: 5, Skipped: 1, Excluded: 1})
	obs.FileFailed("/data/bad.json", domain.ConventionJSON, domain.Malformedf("root is not an array"))
	obs.FileFailed("/data/test.txt", domain.ConventionBNatureTestList, errors.New("permission denied"))
	obs.Completed(3)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 4)

	assert.Equal(t, "INFO", recs[0]["level"])
	assert.Equal(t, "/data/labels.txt", recs[0]["file"])
	assert.Equal(t, "GENERIC_TEXT", recs[0]["convention"])
	assert.EqualValues(t, 3, recs[0]["entries"])
	assert.EqualValues(t, 5, recs[0]["records"])
	assert.EqualValues(t, 1, recs[0]["skipped"])
	assert.EqualValues(t, 1, recs[0]["excluded"])

	assert.Equal(t, "WARN", recs[1]["level"])
	assert.Equal(t, "ERROR", recs[2]["level"])
	assert.Equal(t, "permission denied", recs[2]["error"])

	assert.Equal(t, "collection completed", recs[3]["msg"])
	assert.EqualValues(t, 3, recs[3]["mappings"])
}

func TestObservers_FanOut(t *testing.T) {
	t.Parallel()

	a, b := &recordingObserver{}, &recordingObserver{}
	obs := Observers{a, NopObserver{}, b}

	obs.FileCollected("x.txt", domain.ConventionGenericText, FileStats{Entries: 1, Records: 1})
	obs.FileFailed("y.json", domain.ConventionJSON, domain.ErrMalformedInput)
	obs.Completed(7)

	for _, r := range []*recordingObserver{a, b} {
		require.Len(t, r.events, 2)
		assert.Equal(t, "collected", r.events[0].kind)
		assert.Equal(t, "failed", r.events[1].kind)
		assert.Equal(t, 7, r.total)
	}
}
