// Package delimited parses line-oriented caption files where each line holds
// an image name and a caption separated by one of a few delimiters:
//
//	image1.jpg   একটি ছেলে মাঠে খেলছে।
//	1.png #একটি ছেলে ব্রিজের রেলিংয়ে দাড়িয়ে আছে।
//	2.png#caption
package delimited

import (
	"strings"
	"unicode"
)

// Rules is an ordered delimiter precedence. The first delimiter present in a
// line wins and the line is split on its first occurrence. With
// WhitespaceFallback set, a line containing none of the delimiters is split
// into its first whitespace-separated token and the rest.
type Rules struct {
	Delimiters         []string
	WhitespaceFallback bool
}

var (
	// Standard is used for generic caption text files.
	Standard = Rules{Delimiters: []string{"   ", " #", "#"}}

	// StandardWithFallback is used for the BNATURE caption file.
	StandardWithFallback = Rules{Delimiters: []string{"   ", " #", "#"}, WhitespaceFallback: true}

	// Annotation is used for the BNLIT test annotation file.
	Annotation = Rules{Delimiters: []string{" #", "#"}, WhitespaceFallback: true}
)

// Split breaks a raw line into an image name and a caption. ok is false for
// blank lines, lines without a recognised delimiter, and lines where either
// part is empty after trimming.
func Split(line string, rules Rules) (name, caption string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}

	found := false
	for _, d := range rules.Delimiters {
		if before, after, cut := strings.Cut(line, d); cut {
			name, caption, found = before, after, true
			break
		}
	}

	if !found {
		if !rules.WhitespaceFallback {
			return "", "", false
		}
		i := strings.IndexFunc(line, unicode.IsSpace)
		if i < 0 {
			return "", "", false
		}
		name, caption = line[:i], line[i:]
	}

	name = strings.TrimSpace(name)
	caption = strings.TrimSpace(caption)
	if name == "" || caption == "" {
		return "", "", false
	}
	return name, caption, true
}
