package services

import (
	"github.com/cijsubs/cijsubs/internal/models"
)

// TranscriptConverter defines the interface for rendering a validated transcript
type TranscriptConverter interface {
	// ToWebVTT renders the transcript as a WebVTT document
	ToWebVTT(transcript *models.Transcript) []byte

	// ToPlainText renders the transcript text without timing or markup
	ToPlainText(transcript *models.Transcript) []byte
}
