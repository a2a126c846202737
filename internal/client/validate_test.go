package client

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/cijsubs/cijsubs/internal/apperrors"
	"github.com/cijsubs/cijsubs/internal/models"
)

func TestValidateCatalog_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing data", `{}`, "data"},
		{"missing modules", `{"data":{}}`, "data.modules"},
		{"zero id", `{"data":{"modules":[{"id":0}]}}`, "data.modules[0].id"},
		{"negative id", `{"data":{"modules":[{"id":1},{"id":-3}]}}`, "data.modules[1].id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload models.CatalogResponse
			if err := json.Unmarshal([]byte(tt.body), &payload); err != nil {
				t.Fatalf("bad fixture: %v", err)
			}
			_, err := ValidateCatalog(&payload)
			var verr *apperrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, verr.Field)
			}
		})
	}
}

func TestValidateCatalog_EmptyModules(t *testing.T) {
	var payload models.CatalogResponse
	if err := json.Unmarshal([]byte(`{"data":{"modules":[]}}`), &payload); err != nil {
		t.Fatal(err)
	}
	catalog, err := ValidateCatalog(&payload)
	if err != nil {
		t.Fatalf("Expected empty catalog to be valid, got %v", err)
	}
	if len(catalog.Videos) != 0 || len(catalog.Listed) != 0 {
		t.Errorf("Expected empty catalog, got %+v", catalog)
	}
}

func TestValidateTranscript_Times(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing time", `{"data":{"cues":[{"text":"a"}]}}`, "data.cues[0].time"},
		{"missing start", `{"data":{"cues":[{"time":{"end":1},"text":"a"}]}}`, "data.cues[0].time.start"},
		{"negative start", `{"data":{"cues":[{"time":{"start":-1,"end":1},"text":"a"}]}}`, "data.cues[0].time.start"},
		{"end before start", `{"data":{"cues":[{"time":{"start":0,"end":1},"text":"a"},{"time":{"start":5,"end":4},"text":"b"}]}}`, "data.cues[1].time.end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload models.TranscriptResponse
			if err := json.Unmarshal([]byte(tt.body), &payload); err != nil {
				t.Fatalf("bad fixture: %v", err)
			}
			_, err := ValidateTranscript(&payload)
			var verr *apperrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, verr.Field)
			}
		})
	}
}

func TestValidateTranscript_ZeroLengthCue(t *testing.T) {
	var payload models.TranscriptResponse
	if err := json.Unmarshal([]byte(`{"data":{"cues":[{"time":{"start":2,"end":2},"text":""}]}}`), &payload); err != nil {
		t.Fatal(err)
	}
	transcript, err := ValidateTranscript(&payload)
	if err != nil {
		t.Fatalf("Expected zero-length cue to be valid, got %v", err)
	}
	if len(transcript.Cues) != 1 || transcript.Cues[0].Start != 2 {
		t.Errorf("Unexpected cues: %+v", transcript.Cues)
	}
}
