package delimited

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/captionmap/internal/app/collector/imagepath"
	"github.com/heartmarshall/captionmap/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newParser(t *testing.T, validate bool) *Parser {
	t.Helper()
	r, err := imagepath.New(validate, 64)
	require.NoError(t, err)
	return New(r)
}

func TestParse_AppendsCaptions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "test_captions_bn.txt")
	writeFile(t, file, "a.jpg   hello world\n\na.jpg   second caption\nb.jpg #other\n")

	res, err := newParser(t, false).Parse(file, dir)
	require.NoError(t, err)

	assert.Equal(t, domain.CaptionMapping{
		filepath.Join(dir, "a.jpg"): {"hello world", "second caption"},
		filepath.Join(dir, "b.jpg"): {"other"},
	}, res.Captions)
	assert.Equal(t, 4, res.Stats.TotalLines)
	assert.Zero(t, res.Stats.Malformed)
}

func TestParse_DropsUndelimitedLines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	writeFile(t, file, "just some words\nanother line\na.jpg #\n")

	res, err := newParser(t, false).Parse(file, dir)
	require.NoError(t, err)

	assert.Empty(t, res.Captions)
	assert.Equal(t, 3, res.Stats.Malformed)
}

func TestParse_ValidateImages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "present.jpg"), "img")
	file := filepath.Join(dir, "list.txt")
	writeFile(t, file, "present.jpg#yes\nmissing.jpg#no\n")

	res, err := newParser(t, true).Parse(file, dir)
	require.NoError(t, err)

	assert.Equal(t, domain.CaptionMapping{filepath.Join(dir, "present.jpg"): {"yes"}}, res.Captions)
	assert.Equal(t, 1, res.Stats.Excluded)
}

func TestParse_StripsBOM(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "bom.txt")
	writeFile(t, file, "\ufeffa.jpg#caption\n")

	res, err := newParser(t, false).Parse(file, dir)
	require.NoError(t, err)
	assert.Contains(t, res.Captions, filepath.Join(dir, "a.jpg"))
}

func TestParse_LongLineDoesNotStopTheFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "labels.txt")
	long := strings.Repeat("x", 1100*1024)
	writeFile(t, file, "a.jpg   first\nb.jpg   "+long+"\nc.jpg   third\n")

	res, err := newParser(t, false).Parse(file, dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"first"}, res.Captions[filepath.Join(dir, "a.jpg")])
	assert.Equal(t, []string{long}, res.Captions[filepath.Join(dir, "b.jpg")])
	assert.Equal(t, []string{"third"}, res.Captions[filepath.Join(dir, "c.jpg")])
	assert.Equal(t, 3, res.Stats.TotalLines)
}

func TestParse_LineEndings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "crlf.txt")
	writeFile(t, file, "a.jpg#one\r\nb.jpg#two")

	res, err := newParser(t, false).Parse(file, dir)
	require.NoError(t, err)
	assert.Equal(t, domain.CaptionMapping{
		filepath.Join(dir, "a.jpg"): {"one"},
		filepath.Join(dir, "b.jpg"): {"two"},
	}, res.Captions, "CRLF is stripped and a last line without newline is kept")
}

func TestParse_MissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := newParser(t, false).Parse(filepath.Join(dir, "nope.txt"), dir)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, res.Captions)
}

func TestReadMap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "caption.txt")
	writeFile(t, file, "img1.jpg#a caption\nimg1.jpg   another\nimg2.jpg plain words\nlonely\n")

	got, err := ReadMap(file, StandardWithFallback)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"img1.jpg": {"a caption", "another"},
		"img2.jpg": {"plain words"},
	}, got)

	got, err = ReadMap(file, Standard)
	require.NoError(t, err)
	assert.NotContains(t, got, "img2.jpg", "no whitespace fallback with Standard rules")
}

func TestReadList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "test.txt")
	writeFile(t, file, "  img2.jpg \n\nimg1.jpg\r\n   \nimg2.jpg\n")

	got, err := ReadList(file)
	require.NoError(t, err)
	assert.Equal(t, []string{"img2.jpg", "img1.jpg", "img2.jpg"}, got)
}
