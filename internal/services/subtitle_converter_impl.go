package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cijsubs/cijsubs/internal/config"
	"github.com/cijsubs/cijsubs/internal/models"
)

// DefaultTranscriptConverter is the default implementation of TranscriptConverter
type DefaultTranscriptConverter struct{}

// NewTranscriptConverter creates a new instance of DefaultTranscriptConverter
func NewTranscriptConverter() TranscriptConverter {
	return &DefaultTranscriptConverter{}
}

// ToWebVTT renders one cue block per cue, numbered from 0. Inline markup
// such as <ruby> is kept since WebVTT cue text supports it.
func (c *DefaultTranscriptConverter) ToWebVTT(transcript *models.Transcript) []byte {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")

	for idx, cue := range transcript.Cues {
		fmt.Fprintf(&sb, "%d\n", idx)
		fmt.Fprintf(&sb, "%s --> %s\n", formatTimestamp(cue.Start), formatTimestamp(cue.End))
		sb.WriteString(vttCueText(cue.Text))
		sb.WriteString("\n\n")
	}

	return []byte(sb.String())
}

// ToPlainText concatenates the cue texts, starting a new line for every cue
// that opens a paragraph. Ruby annotations and tags are removed.
func (c *DefaultTranscriptConverter) ToPlainText(transcript *models.Transcript) []byte {
	var sb strings.Builder

	for _, cue := range transcript.Cues {
		if cue.NewParagraph {
			sb.WriteString("\n")
		}
		sb.WriteString(stripMarkup(cue.Text))
	}

	return []byte(sb.String())
}

// formatTimestamp renders seconds as HH:MM:SS.mmm, truncating below a millisecond
func formatTimestamp(seconds float64) string {
	// The epsilon absorbs binary representation error, e.g. 1.001*1000 = 1000.9999
	totalMs := int64(math.Floor(seconds*1000 + 1e-6))
	ms := totalMs % 1000
	totalSec := totalMs / 1000

	hours := totalSec / 3600
	minutes := (totalSec % 3600) / 60
	secs := totalSec % 60

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, ms)
}

// vttCueText keeps cue text from terminating the cue block early: blank
// lines end a cue and "-->" is reserved for timing lines.
func vttCueText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "-->", "->")

	lines := strings.Split(strings.TrimSpace(text), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// stripMarkup drops <rt>/<rp> ruby annotations and returns the remaining text
func stripMarkup(text string) string {
	if !strings.ContainsRune(text, '<') && !strings.ContainsRune(text, '&') {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		logger := config.GetLogger()
		logger.Debug().Err(err).Str("text", text).Msg("Failed to parse cue markup, keeping raw text")
		return text
	}
	doc.Find("rt, rp").Remove()
	return doc.Text()
}
