package dto

// NewsItemDetails is the free-form detail map attached to an extracted item.
type NewsItemDetails struct {
	Location       string   `json:"location"`
	FinancialValue string   `json:"financial_value"`
	Partners       []string `json:"partners"`
	Products       []string `json:"products"`
	Category       string   `json:"category,omitempty"`
}

// NewsItem is one structured intelligence item as reported by the extraction
// service, before validation by the persistence gate.
type NewsItem struct {
	EventType   string          `json:"event_type"`
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	ThreatLevel int             `json:"threat_level"`
	Date        string          `json:"date"`
	SourceURL   string          `json:"source_url"`
	Region      string          `json:"region"`
	Details     NewsItemDetails `json:"details"`

	// SearchRegion is backfilled from the originating candidate, not parsed
	// from the extraction response.
	SearchRegion string `json:"-"`
}

// ExtractionResult is the expected JSON structure of one extraction batch.
type ExtractionResult struct {
	NoRelevantNews bool       `json:"no_relevant_news"`
	NewsItems      []NewsItem `json:"news_items"`
}
