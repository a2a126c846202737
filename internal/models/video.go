package models

import "fmt"

// Video is a catalog entry that has a downloadable transcript
type Video struct {
	ID           int
	TitleJP      string
	TitleEN      string
	TranscriptID int
}

// Title returns the display title used for stored file names
func (v Video) Title() string {
	return fmt.Sprintf("%s | %s", v.TitleJP, v.TitleEN)
}
