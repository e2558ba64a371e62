package collector

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/heartmarshall/captionmap/internal/app/collector/delimited"
	"github.com/heartmarshall/captionmap/internal/app/collector/imagepath"
	"github.com/heartmarshall/captionmap/internal/app/collector/jsoncap"
	"github.com/heartmarshall/captionmap/internal/app/collector/tabular"
	"github.com/heartmarshall/captionmap/internal/domain"
)

// ErrUnsupportedFormat is returned by ParserFor for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported annotation format")

// FileStats describes how the records of one annotation file were used.
type FileStats struct {
	Entries  int // images contributed
	Records  int // elements, lines or rows read
	Skipped  int // records without a usable image name or caption
	Excluded int // records whose image is missing on disk
}

// Extractor turns one annotation file into a caption mapping. Image names are
// resolved against imagesDir.
type Extractor interface {
	Extract(path, imagesDir string) (domain.CaptionMapping, FileStats, error)
}

// ParserFor selects a parser by file extension: .json, .txt, .csv, .tsv
// or .xlsx.
func ParserFor(path string, resolver *imagepath.Resolver) (Extractor, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".json":
		return jsonExtractor{jsoncap.New(resolver)}, nil
	case ext == ".txt":
		return textExtractor{delimited.New(resolver)}, nil
	case tabular.Supports(path):
		return tableExtractor{tabular.New(resolver)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

type jsonExtractor struct{ p *jsoncap.Parser }

func (e jsonExtractor) Extract(path, imagesDir string) (domain.CaptionMapping, FileStats, error) {
	res, err := e.p.Parse(path, imagesDir)
	return res.Captions, FileStats{
		Entries:  len(res.Captions),
		Records:  res.Stats.Elements,
		Skipped:  res.Stats.Skipped,
		Excluded: res.Stats.Excluded,
	}, err
}

type textExtractor struct{ p *delimited.Parser }

func (e textExtractor) Extract(path, imagesDir string) (domain.CaptionMapping, FileStats, error) {
	res, err := e.p.Parse(path, imagesDir)
	return res.Captions, delimitedStats(res), err
}

type tableExtractor struct{ p *tabular.Parser }

func (e tableExtractor) Extract(path, imagesDir string) (domain.CaptionMapping, FileStats, error) {
	res, err := e.p.Parse(path, imagesDir)
	return res.Captions, FileStats{
		Entries:  len(res.Captions),
		Records:  res.Stats.Rows,
		Skipped:  res.Stats.Skipped,
		Excluded: res.Stats.Excluded,
	}, err
}

func delimitedStats(res delimited.Result) FileStats {
	return FileStats{
		Entries:  len(res.Captions),
		Records:  res.Stats.TotalLines,
		Skipped:  res.Stats.Malformed,
		Excluded: res.Stats.Excluded,
	}
}
