package models

// RenderedAsset is the output of the card renderer: one SVG document on disk
// plus the metadata delivery needs to caption and upload it.
type RenderedAsset struct {
	FileName    string `json:"file_name"`
	FilePath    string `json:"file_path"`
	Description string `json:"description"`
	Project     string `json:"project"`
	Symbol      string `json:"symbol"`
	Trend       Trend  `json:"trend"`
}

// RenderedChart is the output of the chart renderer. Exactly one per run.
type RenderedChart struct {
	FileName    string `json:"file_name"`
	FilePath    string `json:"file_path"`
	Description string `json:"description"`
	Type        string `json:"type"`
}
