package dto

// SerperSearchRequest is the request payload for the Serper.dev API.
type SerperSearchRequest struct {
	Q   string `json:"q"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
	Num int    `json:"num"`
	TBS string `json:"tbs,omitempty"`
}

// SerperResult is a single search hit.
type SerperResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
}

// SerperSearchResponse is the response from the Serper.dev API. The populated
// collection depends on the requested search kind.
type SerperSearchResponse struct {
	News    []SerperResult `json:"news"`
	Organic []SerperResult `json:"organic"`
}
