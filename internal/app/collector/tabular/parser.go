// Package tabular parses spreadsheet-style caption sources (CSV, TSV, XLSX)
// with a header row naming an image column and a caption column.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/heartmarshall/captionmap/internal/app/collector/imagepath"
	"github.com/heartmarshall/captionmap/internal/domain"
)

// Header names accepted for each column, in priority order (normalized).
var (
	imageColumns   = []string{"filename", "image", "file", "image_name"}
	captionColumns = []string{"caption", "captions", "text"}
)

// Sheets that hold notes rather than data.
var metadataSheets = map[string]bool{
	"info":     true,
	"metadata": true,
	"about":    true,
	"readme":   true,
	"notes":    true,
}

// Stats holds parser statistics for logging.
type Stats struct {
	Rows     int
	Skipped  int
	Excluded int
}

// Result is the outcome of parsing one file.
type Result struct {
	Captions domain.CaptionMapping
	Stats    Stats
}

// Parser extracts captions from CSV, TSV and XLSX files.
type Parser struct {
	resolver *imagepath.Resolver
}

// New creates a Parser that resolves image names with resolver.
func New(resolver *imagepath.Resolver) *Parser {
	return &Parser{resolver: resolver}
}

// Supports reports whether the file extension is handled by this package.
func Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".xlsx":
		return true
	}
	return false
}

// Parse reads a tabular caption file, routing on the file extension.
func (p *Parser) Parse(path, imagesDir string) (Result, error) {
	res := Result{Captions: domain.NewCaptionMapping()}

	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".tsv":
		rows, err = readDelimitedFile(path, ext == ".tsv")
	case ".xlsx":
		rows, err = readWorkbook(path)
	default:
		return res, fmt.Errorf("unsupported file type: %s", filepath.Base(path))
	}
	if err != nil {
		return res, err
	}

	return p.build(rows, imagesDir)
}

func (p *Parser) build(rows [][]string, imagesDir string) (Result, error) {
	res := Result{Captions: domain.NewCaptionMapping()}
	if len(rows) == 0 {
		return res, domain.Malformedf("missing header row")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = domain.NormalizeHeader(h)
	}

	imageIdx := columnIndex(headers, imageColumns)
	if imageIdx < 0 {
		return res, domain.Malformedf("no image column, want one of %v", imageColumns)
	}
	captionIdx := columnIndex(headers, captionColumns)
	if captionIdx < 0 {
		return res, domain.Malformedf("no caption column, want one of %v", captionColumns)
	}

	for _, row := range rows[1:] {
		res.Stats.Rows++

		name := strings.TrimSpace(cell(row, imageIdx))
		caption := domain.NormalizeCaption(cell(row, captionIdx))
		if name == "" || caption == "" {
			res.Stats.Skipped++
			continue
		}

		imgPath, include := p.resolver.Resolve(imagesDir, name)
		if !include {
			res.Stats.Excluded++
			continue
		}
		res.Captions.Add(imgPath, caption)
	}

	return res, nil
}

func columnIndex(headers, candidates []string) int {
	for _, c := range candidates {
		for i, h := range headers {
			if h == c {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func readDelimitedFile(path string, isTSV bool) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return readDelimited(f, isTSV)
}

// readDelimited parses CSV or TSV content. Rows may have varying widths.
func readDelimited(r io.Reader, isTSV bool) ([][]string, error) {
	reader := csv.NewReader(r)
	if isTSV {
		reader.Comma = '\t'
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, domain.Malformedf("parse csv: %v", err)
	}
	return rows, nil
}

// readWorkbook returns the rows of the first non-metadata sheet. If every
// sheet looks like metadata, the last one is used.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.Malformedf("no sheets in workbook")
	}

	sheetName := sheets[len(sheets)-1]
	for _, sheet := range sheets {
		if !metadataSheets[strings.ToLower(strings.TrimSpace(sheet))] {
			sheetName = sheet
			break
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	return rows, nil
}
