// Package jsoncap parses JSON caption files of the form
//
//	[
//	  {"filename": "image1.jpg", "caption": ["caption1", "caption2"]},
//	  {"filename": "image2.jpg", "caption": "caption3"}
//	]
//
// Pure function: file path in, caption mapping out. No logging.
package jsoncap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/heartmarshall/captionmap/internal/app/collector/imagepath"
	"github.com/heartmarshall/captionmap/internal/domain"
)

const (
	keyFilename = "filename"
	keyCaption  = "caption"
)

// Stats holds parser statistics for logging.
type Stats struct {
	Elements int
	Skipped  int
	Excluded int
}

// Result is the outcome of parsing one file.
type Result struct {
	Captions domain.CaptionMapping
	Stats    Stats
}

// Parser extracts captions from JSON files.
type Parser struct {
	resolver *imagepath.Resolver
}

// New creates a Parser that resolves image names with resolver.
func New(resolver *imagepath.Resolver) *Parser {
	return &Parser{resolver: resolver}
}

// Parse reads a JSON caption file. Image names are resolved against
// imagesDir. On error the returned Result still holds whatever was gathered
// (for JSON that is always an empty mapping).
func (p *Parser) Parse(path, imagesDir string) (Result, error) {
	res := Result{Captions: domain.NewCaptionMapping()}

	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("read json: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return res, domain.Malformedf("invalid json in %s: %v", path, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return res, domain.Malformedf("invalid json in %s: trailing data after root value", path)
	}

	items, ok := root.([]any)
	if !ok {
		return res, domain.Malformedf("json root of %s is not an array", path)
	}

	for _, item := range items {
		res.Stats.Elements++

		obj, ok := item.(map[string]any)
		if !ok {
			res.Stats.Skipped++
			continue
		}
		name, ok := obj[keyFilename].(string)
		rawCaption, hasCaption := obj[keyCaption]
		if !ok || !hasCaption {
			res.Stats.Skipped++
			continue
		}

		imgPath, include := p.resolver.Resolve(imagesDir, strings.TrimSpace(name))
		if !include {
			res.Stats.Excluded++
			continue
		}

		res.Captions.Set(imgPath, formatCaptions(rawCaption))
	}

	return res, nil
}

// formatCaptions coerces a scalar caption to a list, drops falsy values and
// formats the rest.
func formatCaptions(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		list = []any{raw}
	}

	var out []string
	for _, c := range list {
		if isFalsy(c) {
			continue
		}
		out = append(out, domain.FormatJSONCaption(stringify(c)))
	}
	return out
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

// stringify renders a caption value. Strings are used as-is; anything else
// is rendered by render.
func stringify(v any) string {
	if x, ok := v.(string); ok {
		return x
	}
	return render(v)
}

// render writes a decoded JSON value in the notation the caption datasets
// were produced with: True/False, None for null, single-quoted strings
// inside containers, ", " and ": " separators. Object keys are sorted.
func render(v any) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("None")
	case bool:
		if x {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case string:
		b.WriteString(quote(x))
	case json.Number:
		b.WriteString(formatNumber(x))
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, e)
		}
		b.WriteByte(']')
	case map[string]any:
		b.WriteByte('{')
		for i, k := range slices.Sorted(maps.Keys(x)) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quote(k))
			b.WriteString(": ")
			writeValue(b, x[k])
		}
		b.WriteByte('}')
	default:
		fmt.Fprint(b, x)
	}
}

// formatNumber keeps integer literals and writes floats with a ".0" suffix
// when integral, switching to exponent form outside [1e-4, 1e16).
func formatNumber(n json.Number) string {
	lit := n.String()
	if !strings.ContainsAny(lit, ".eE") {
		return lit
	}
	f, err := n.Float64()
	if err != nil {
		return lit
	}

	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return e
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// quote single-quotes s, switching to double quotes when s contains a
// single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = '"'
	}

	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}
