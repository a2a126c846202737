package client

import (
	"fmt"
	"math"

	"github.com/cijsubs/cijsubs/internal/apperrors"
	"github.com/cijsubs/cijsubs/internal/models"
)

// ValidateCatalog checks the shape of a catalog payload and extracts the
// videos that can be downloaded. Modules without a plan or transcript ID are
// listed but not downloadable.
func ValidateCatalog(payload *models.CatalogResponse) (*models.Catalog, error) {
	if payload.Data == nil {
		return nil, apperrors.NewValidationError("data", "missing")
	}
	if payload.Data.Modules == nil {
		return nil, apperrors.NewValidationError("data.modules", "missing")
	}

	catalog := &models.Catalog{
		Videos: make(map[int]models.Video),
		Listed: make(map[int]struct{}),
	}
	for i, module := range *payload.Data.Modules {
		if module.ID <= 0 {
			return nil, apperrors.NewValidationError(fmt.Sprintf("data.modules[%d].id", i), "must be a positive integer")
		}
		catalog.Listed[module.ID] = struct{}{}

		if module.Plan == nil || module.Plan.TranscriptID == nil {
			continue
		}
		catalog.Videos[module.ID] = models.Video{
			ID:           module.ID,
			TitleJP:      module.Plan.TitleJP,
			TitleEN:      module.Plan.TitleEN,
			TranscriptID: *module.Plan.TranscriptID,
		}
	}

	return catalog, nil
}

// ValidateTranscript checks every cue of a transcript payload. Partial data
// is rejected rather than silently accepted.
func ValidateTranscript(payload *models.TranscriptResponse) (*models.Transcript, error) {
	if payload.Data == nil {
		return nil, apperrors.NewValidationError("data", "missing")
	}
	if payload.Data.Cues == nil {
		return nil, apperrors.NewValidationError("data.cues", "missing")
	}

	raw := *payload.Data.Cues
	cues := make([]models.Cue, 0, len(raw))
	for i, cue := range raw {
		field := fmt.Sprintf("data.cues[%d]", i)
		switch {
		case cue.Time == nil:
			return nil, apperrors.NewValidationError(field+".time", "missing")
		case cue.Time.Start == nil:
			return nil, apperrors.NewValidationError(field+".time.start", "missing")
		case cue.Time.End == nil:
			return nil, apperrors.NewValidationError(field+".time.end", "missing")
		case cue.Text == nil:
			return nil, apperrors.NewValidationError(field+".text", "missing")
		}

		start, end := *cue.Time.Start, *cue.Time.End
		if start < 0 || math.IsNaN(start) || math.IsInf(start, 0) {
			return nil, apperrors.NewValidationError(field+".time.start", fmt.Sprintf("invalid value %v", start))
		}
		if end < start || math.IsInf(end, 0) {
			return nil, apperrors.NewValidationError(field+".time.end", fmt.Sprintf("ends at %v before start %v", end, start))
		}

		cues = append(cues, models.Cue{
			Start:        start,
			End:          end,
			Text:         *cue.Text,
			NewParagraph: cue.NewParagraph,
		})
	}

	return &models.Transcript{Cues: cues}, nil
}
