package delimited

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/heartmarshall/captionmap/internal/app/collector/imagepath"
	"github.com/heartmarshall/captionmap/internal/domain"
)

const (
	readBufSize = 64 * 1024
	utf8BOM     = "\ufeff"
)

// Stats holds parser statistics for logging.
type Stats struct {
	TotalLines int
	Malformed  int
	Excluded   int
}

// Result is the outcome of parsing one file.
type Result struct {
	Captions domain.CaptionMapping
	Stats    Stats
}

// Parser extracts captions from delimited text files using the Standard rules.
type Parser struct {
	resolver *imagepath.Resolver
	rules    Rules
}

// New creates a Parser with the Standard delimiter rules.
func New(resolver *imagepath.Resolver) *Parser {
	return NewWithRules(resolver, Standard)
}

// NewWithRules creates a Parser with custom delimiter rules.
func NewWithRules(resolver *imagepath.Resolver, rules Rules) *Parser {
	return &Parser{resolver: resolver, rules: rules}
}

// Parse reads a caption file; repeated image names accumulate captions.
// On a read error the Result holds every line parsed before the failure.
func (p *Parser) Parse(path, imagesDir string) (Result, error) {
	res := Result{Captions: domain.NewCaptionMapping()}

	err := scanLines(path, func(line string) {
		res.Stats.TotalLines++
		if strings.TrimSpace(line) == "" {
			return
		}

		name, caption, ok := Split(line, p.rules)
		if !ok {
			res.Stats.Malformed++
			return
		}

		imgPath, include := p.resolver.Resolve(imagesDir, name)
		if !include {
			res.Stats.Excluded++
			return
		}
		res.Captions.Add(imgPath, caption)
	})

	return res, err
}

// ReadMap parses a caption file into image name -> captions without
// resolving paths. Lines that do not split are skipped.
func ReadMap(path string, rules Rules) (map[string][]string, error) {
	out := make(map[string][]string)
	err := scanLines(path, func(line string) {
		if name, caption, ok := Split(line, rules); ok {
			out[name] = append(out[name], caption)
		}
	})
	return out, err
}

// ReadList returns the non-blank, trimmed lines of a file in order.
func ReadList(path string) ([]string, error) {
	var out []string
	err := scanLines(path, func(line string) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	})
	return out, err
}

// scanLines calls fn for every line of the file, without its line ending.
// Lines have no length limit. A leading UTF-8 BOM is dropped.
func scanLines(path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, readBufSize)

	first := true
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if first {
				line = strings.TrimPrefix(line, utf8BOM)
			}
			first = false
			fn(line)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}
}
