package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CatalogEntryOptions describes one module of a generated catalog payload.
// A zero TranscriptID produces a module without a transcript reference.
type CatalogEntryOptions struct {
	ID           int
	TitleJP      string
	TitleEN      string
	TranscriptID int
	NoPlan       bool
}

// CueOptions describes one cue of a generated transcript payload
type CueOptions struct {
	Start        float64
	End          float64
	Text         string
	NewParagraph bool
}

// GenerateCatalogJSON builds a content listing payload.
// This is a test helper and should not be used in production code.
func GenerateCatalogJSON(entries []CatalogEntryOptions) string {
	modules := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		module := map[string]any{"id": e.ID}
		if !e.NoPlan {
			plan := map[string]any{
				"titleJP": e.TitleJP,
				"titleEN": e.TitleEN,
			}
			if e.TranscriptID != 0 {
				plan["transcriptId"] = e.TranscriptID
			}
			module["plan"] = plan
		}
		modules = append(modules, module)
	}
	return mustMarshal(map[string]any{"data": map[string]any{"modules": modules}})
}

// SimpleCatalog builds a catalog where video N has transcript 100+N and
// titles derived from N.
func SimpleCatalog(ids ...int) string {
	entries := make([]CatalogEntryOptions, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, CatalogEntryOptions{
			ID:           id,
			TitleJP:      fmt.Sprintf("動画%d", id),
			TitleEN:      fmt.Sprintf("Video %d", id),
			TranscriptID: 100 + id,
		})
	}
	return GenerateCatalogJSON(entries)
}

// GenerateTranscriptJSON builds a transcript payload
func GenerateTranscriptJSON(cues []CueOptions) string {
	out := make([]map[string]any, 0, len(cues))
	for _, c := range cues {
		out = append(out, map[string]any{
			"time":         map[string]any{"start": c.Start, "end": c.End},
			"text":         c.Text,
			"newParagraph": c.NewParagraph,
		})
	}
	return mustMarshal(map[string]any{"data": map[string]any{"cues": out}})
}

// DefaultTranscriptJSON is a small valid transcript
func DefaultTranscriptJSON() string {
	return GenerateTranscriptJSON([]CueOptions{
		{Start: 0, End: 1.5, Text: "こんにちは。"},
		{Start: 1.5, End: 3.25, Text: "今日はいい天気です。"},
		{Start: 4, End: 6, Text: "さようなら。", NewParagraph: true},
	})
}

func mustMarshal(v any) string {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		panic(err)
	}
	return sb.String()
}
