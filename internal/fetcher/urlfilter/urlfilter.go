// Package urlfilter decides whether a URL plausibly points to a news article
// rather than a product, profile, or social page.
package urlfilter

import "strings"

// blockedPatterns marks URLs that indicate non-news content: social
// platforms, marketplaces, company directories, and generic site sections.
var blockedPatterns = []string{
	"linkedin.com", "crunchbase.com", "facebook.com", "instagram.com",
	"youtube.com", "twitter.com", "x.com",
	"/product", "/products", "/catalog", "/catalogo",
	"/shop", "/store", "/loja", "/tienda",
	"/contact", "/contato", "/about", "/sobre",
	"mercadolivre", "mercadolibre", "amazon.com", "alibaba.com",
	"olx.com", "ebay.com",
	"glassdoor.com", "indeed.com", "ziprecruiter.com",
	"wikipedia.org", "dnb.com", "zoominfo.com",
	"/careers", "/vagas", "/empleo",
}

// IsArticle reports whether url plausibly points to a news article. It is a
// pure function: no network access, no state.
func IsArticle(url string) bool {
	if url == "" {
		return false
	}
	lower := strings.ToLower(url)
	for _, pattern := range blockedPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	return true
}
