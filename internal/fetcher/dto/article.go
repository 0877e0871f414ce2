package dto

// SearchKind selects the Serper result collection to query.
type SearchKind string

const (
	SearchKindNews    SearchKind = "news"
	SearchKindOrganic SearchKind = "organic"
)

// GroundedRegionLabel marks candidates that came from the grounded-search
// path. The persistence gate treats their dates as unreliable.
const GroundedRegionLabel = "gemini_search"

// Region is a country/language pair for a regional search pass.
type Region struct {
	GL    string `json:"gl"`
	HL    string `json:"hl"`
	Label string `json:"label"`
}

// CandidateArticle is an unvalidated search result considered for extraction.
// It lives only for the duration of a run and is never persisted itself.
type CandidateArticle struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	Snippet      string `json:"snippet"`
	Date         string `json:"date,omitempty"`
	SearchRegion string `json:"search_region"`
}
