package collector

import (
	"path/filepath"
	"strings"

	"github.com/heartmarshall/captionmap/internal/domain"
)

const bnlitLongPrefix = "test-annotation-bangla natural language image to text"

// skipWords mark caption files that belong to other splits or are only
// consumed as the second half of a BNATURE join.
var skipWords = []string{"train", "validation", "val", "caption"}

// Rule classifies a lowercased base filename.
type Rule struct {
	Convention domain.Convention
	Match      func(lower string) bool
}

// Detector classifies files by name. Rules are evaluated in order and the
// first match wins; a name no rule matches is IRRELEVANT.
type Detector struct {
	rules []Rule
}

// NewDetector creates a Detector with the given rules. Rules naming an
// unknown convention are dropped.
func NewDetector(rules ...Rule) *Detector {
	valid := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Convention.IsValid() {
			valid = append(valid, r)
		}
	}
	return &Detector{rules: valid}
}

// DefaultRules returns the dataset conventions in precedence order. The
// dataset-specific rules come before the generic skip rule so that names
// like test-annotation-bnlit.txt are never discarded by it.
//
// JSON and GENERIC_TEXT files are collected, not ignored: their image names
// resolve against the file's own directory (see Collector.New).
func DefaultRules() []Rule {
	return []Rule{
		{Convention: domain.ConventionBNatureTestList, Match: isBNatureTestList},
		{Convention: domain.ConventionBNLITTestAnnotation, Match: isBNLITTestAnnotation},
		{Convention: domain.ConventionIrrelevant, Match: isSkippedCaptionFile},
		{Convention: domain.ConventionJSON, Match: hasExt(".json")},
		{Convention: domain.ConventionGenericText, Match: hasExt(".txt")},
	}
}

// DefaultDetector returns a Detector with DefaultRules.
func DefaultDetector() *Detector {
	return NewDetector(DefaultRules()...)
}

// Detect returns the convention for the file at path. Only the base name is
// inspected, case-insensitively.
func (d *Detector) Detect(path string) domain.Convention {
	lower := strings.ToLower(filepath.Base(path))
	for _, r := range d.rules {
		if r.Match(lower) {
			return r.Convention
		}
	}
	return domain.ConventionIrrelevant
}

func isBNatureTestList(lower string) bool {
	return lower == "test.txt"
}

func isBNLITTestAnnotation(lower string) bool {
	return (strings.Contains(lower, "test-annotation") && strings.Contains(lower, "bnlit")) ||
		strings.HasPrefix(lower, bnlitLongPrefix)
}

func isSkippedCaptionFile(lower string) bool {
	if !hasExt(".txt")(lower) && !hasExt(".json")(lower) {
		return false
	}
	for _, w := range skipWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func hasExt(ext string) func(string) bool {
	return func(lower string) bool {
		return strings.HasSuffix(lower, ext)
	}
}
