package doctree

// SummaryRecord is one generated summary of a paper next to its ground truth.
type SummaryRecord struct {
	Title          string `json:"title"`
	GTSummary      string `json:"gt_summary"`
	ID             string `json:"id"`
	PredSummary    string `json:"pred_summary"`
	Method         string `json:"method"`
	ExtractionType string `json:"extraction_type"`
}

// Evaluation is the model-assigned score for one summary record.
type Evaluation struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Method         string   `json:"method"`
	ExtractionType string   `json:"extraction_type"`
	Score          *float64 `json:"score"` // nil when the answer held no usable score
	Raw            string   `json:"raw"`
}
