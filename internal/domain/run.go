package domain

import (
	"time"

	"github.com/google/uuid"
)

// CollectionRun summarizes one pass of the collector over a base directory.
type CollectionRun struct {
	ID             uuid.UUID
	BaseDir        string
	ValidateImages bool
	ImageCount     int
	CaptionCount   int
	Digest         string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// NewCollectionRun starts a run record with a fresh ID.
func NewCollectionRun(baseDir string, validateImages bool, startedAt time.Time) CollectionRun {
	return CollectionRun{
		ID:             uuid.New(),
		BaseDir:        baseDir,
		ValidateImages: validateImages,
		StartedAt:      startedAt,
	}
}

// Finish fills the summary fields from the collected mapping.
func (r *CollectionRun) Finish(m CaptionMapping, finishedAt time.Time) {
	r.ImageCount = len(m)
	r.CaptionCount = m.CaptionCount()
	r.Digest = m.Digest()
	r.FinishedAt = finishedAt
}

// Duration returns the wall time of the run.
func (r CollectionRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
