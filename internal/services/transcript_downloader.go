package services

import (
	"context"
	"slices"

	"github.com/cijsubs/cijsubs/internal/idspec"
	"github.com/cijsubs/cijsubs/internal/models"
)

// Catalog lists the videos available for download. It resolves the "all"
// selector and maps video IDs to transcript IDs.
type Catalog interface {
	GetCatalog(ctx context.Context) (*models.Catalog, error)
}

// TranscriptSource fetches one validated transcript per call
type TranscriptSource interface {
	GetTranscript(ctx context.Context, transcriptID int) (*models.Transcript, error)
}

// API is the remote collaborator of the downloader
type API interface {
	Catalog
	TranscriptSource
}

// TranscriptStore persists downloaded transcripts
type TranscriptStore interface {
	Has(id int) bool
	Write(result *models.DownloadResult) (string, error)
}

// TranscriptDownloader realizes an ID specification into stored transcripts
type TranscriptDownloader interface {
	// Run processes every targeted video sequentially in ascending ID order.
	// Per-video failures are recorded in the summary; the returned error is
	// reserved for failures that stop the whole run.
	Run(ctx context.Context, spec idspec.Spec) (*Summary, error)
}

// Summary reports what a run did with each targeted video
type Summary struct {
	Downloaded  []int
	Skipped     []int // already stored
	Unavailable []int // not listed or without a transcript
	Failed      map[int]error
	// Outcomes holds the transcript fetch outcome of every video that was requested
	Outcomes map[int]*Outcome
}

// Total returns the number of videos the run looked at
func (s *Summary) Total() int {
	return len(s.Downloaded) + len(s.Skipped) + len(s.Unavailable) + len(s.Failed)
}

// FailedIDs returns the IDs of Failed in ascending order
func (s *Summary) FailedIDs() []int {
	ids := make([]int, 0, len(s.Failed))
	for id := range s.Failed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
