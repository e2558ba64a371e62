package domain

import (
	"strings"
)

// NormalizeCaption trims surrounding whitespace. An empty result means the
// caption must be dropped.
func NormalizeCaption(caption string) string {
	return strings.TrimSpace(caption)
}

// FormatJSONCaption trims the caption and appends the single trailing space
// that JSON-sourced captions carry. Emptiness is decided by the caller before
// formatting, so a whitespace-only caption becomes " ".
func FormatJSONCaption(caption string) string {
	return strings.TrimSpace(caption) + " "
}

// NormalizeHeader lowercases a tabular column name and compresses inner
// whitespace and dashes to underscores ("Image Name" -> "image_name").
func NormalizeHeader(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	if header == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(header))
	prevSep := false
	for _, r := range header {
		if r == ' ' || r == '-' || r == '\t' {
			if prevSep {
				continue
			}
			prevSep = true
			b.WriteRune('_')
			continue
		}
		prevSep = false
		b.WriteRune(r)
	}
	return b.String()
}
