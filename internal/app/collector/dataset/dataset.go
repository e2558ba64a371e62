// Package dataset resolves the two hard-coded dataset layouts whose caption
// files do not sit next to their images:
//
//	BNATURE/
//	  caption/test.txt      image names, one per line
//	  caption/caption.txt   "<image><delim><caption>" lines for all splits
//	  Pictures/             images
//
//	BNLIT/
//	  Test-Annotation-BNLIT.txt                      "<image> #<caption>" lines
//	  Bangla Natural Language ... -resized-500_375/  images (optional)
package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/heartmarshall/captionmap/internal/app/collector/delimited"
	"github.com/heartmarshall/captionmap/internal/app/collector/imagepath"
	"github.com/heartmarshall/captionmap/internal/domain"
)

const (
	// BNatureCaptionFile holds the captions joined against test.txt.
	BNatureCaptionFile = "caption.txt"
	// BNaturePicturesDir is the images folder under the BNATURE root.
	BNaturePicturesDir = "Pictures"
	// BNLITResizedDir is the preprocessed images folder next to the BNLIT annotations.
	BNLITResizedDir = "Bangla Natural Language Image to Text (BNLIT)-Preprocessing and Resizing Dataset-resized-500_375"
)

// BNatureLayout locates the files that belong to a BNATURE test list.
type BNatureLayout struct {
	ListPath     string
	CaptionsPath string
	ImagesDir    string
}

// NewBNatureLayout derives the layout from the path of test.txt: the caption
// file sits beside it and the images live in Pictures/ one level up.
func NewBNatureLayout(listPath string) BNatureLayout {
	captionDir := filepath.Dir(listPath)
	root := filepath.Join(captionDir, "..")
	return BNatureLayout{
		ListPath:     listPath,
		CaptionsPath: filepath.Join(captionDir, BNatureCaptionFile),
		ImagesDir:    filepath.Join(root, BNaturePicturesDir),
	}
}

// BNLITImageDirCandidates lists the images directories tried for a BNLIT
// annotation file, most specific first. The last entry is used even if it
// does not exist.
func BNLITImageDirCandidates(annotationPath string) []string {
	dir := filepath.Dir(annotationPath)
	return []string{
		filepath.Join(dir, BNLITResizedDir),
		dir,
		filepath.Join(dir, ".."),
	}
}

// Handler builds caption mappings for the dataset-specific conventions.
type Handler struct {
	resolver *imagepath.Resolver
}

// New creates a Handler that resolves and validates image paths with resolver.
func New(resolver *imagepath.Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// BNatureTestList joins the image names listed in test.txt against the
// sibling caption.txt. Names without captions are skipped and counted as
// malformed; a missing caption.txt yields an empty result without error.
func (h *Handler) BNatureTestList(listPath string) (delimited.Result, error) {
	res := delimited.Result{Captions: domain.NewCaptionMapping()}
	layout := NewBNatureLayout(listPath)

	names, err := delimited.ReadList(layout.ListPath)
	if err != nil {
		return res, fmt.Errorf("read bnature test list: %w", err)
	}
	res.Stats.TotalLines = len(names)

	if !h.resolver.Exists(layout.CaptionsPath) {
		return res, nil
	}
	captions, err := delimited.ReadMap(layout.CaptionsPath, delimited.StandardWithFallback)
	if err != nil {
		return res, fmt.Errorf("read bnature captions: %w", err)
	}

	for _, name := range names {
		caps := captions[name]
		if len(caps) == 0 {
			res.Stats.Malformed++
			continue
		}
		imgPath, include := h.resolver.Resolve(layout.ImagesDir, name)
		if !include {
			res.Stats.Excluded++
			continue
		}
		// Copy so repeated names never share a backing array.
		res.Captions.Set(imgPath, append([]string(nil), caps...))
	}

	return res, nil
}

// BNLITImagesDir picks the first existing candidate directory.
func (h *Handler) BNLITImagesDir(annotationPath string) string {
	return h.resolver.FirstDir(BNLITImageDirCandidates(annotationPath)...)
}

// BNLITTestAnnotation parses a BNLIT test annotation file. Captions for a
// repeated image name accumulate. On a read error the lines parsed so far
// are returned.
func (h *Handler) BNLITTestAnnotation(annotationPath string) (delimited.Result, error) {
	imagesDir := h.BNLITImagesDir(annotationPath)
	parser := delimited.NewWithRules(h.resolver, delimited.Annotation)

	res, err := parser.Parse(annotationPath, imagesDir)
	if err != nil {
		return res, fmt.Errorf("read bnlit annotations: %w", err)
	}
	return res, nil
}
