package models

// TranscriptResponse is the payload of the transcript endpoint
type TranscriptResponse struct {
	Data *struct {
		Cues *[]TranscriptCue `json:"cues"`
	} `json:"data"`
}

// TranscriptCue is a cue as sent by the API
type TranscriptCue struct {
	Time *struct {
		Start *float64 `json:"start"`
		End   *float64 `json:"end"`
	} `json:"time"`
	Text         *string `json:"text"`
	NewParagraph bool    `json:"newParagraph"`
}

// Cue is a validated transcript cue; times are in seconds
type Cue struct {
	Start        float64
	End          float64
	Text         string
	NewParagraph bool
}

// Transcript is the validated subtitle record of one video
type Transcript struct {
	Cues []Cue
}

// DownloadResult holds the rendered documents for one video
type DownloadResult struct {
	Video     Video
	WebVTT    []byte
	PlainText []byte
}
