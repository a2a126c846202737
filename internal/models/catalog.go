package models

// CatalogResponse is the payload of the content listing endpoint.
// Pointer fields distinguish a missing field from its zero value during validation.
type CatalogResponse struct {
	Data *struct {
		Modules *[]CatalogModule `json:"modules"`
	} `json:"data"`
}

// CatalogModule is one video in the content listing
type CatalogModule struct {
	ID   int          `json:"id"`
	Plan *CatalogPlan `json:"plan"`
}

// CatalogPlan holds the titles and transcript reference of a video
type CatalogPlan struct {
	TitleJP      string `json:"titleJP"`
	TitleEN      string `json:"titleEN"`
	TranscriptID *int   `json:"transcriptId"`
}

// Catalog maps video IDs to downloadable videos
type Catalog struct {
	Videos map[int]Video
	// Listed holds every ID present in the listing, including videos without a transcript
	Listed map[int]struct{}
}
