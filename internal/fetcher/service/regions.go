package service

import (
	"strings"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
)

// Regions are the standing search markets, keyed by the names accepted on the
// command line.
var Regions = map[string]dto.Region{
	"global":    {GL: "us", HL: "en", Label: "global"},
	"brazil":    {GL: "br", HL: "pt", Label: "brazil_pt"},
	"argentina": {GL: "ar", HL: "es", Label: "argentina_es"},
	// UK as English-language Europe proxy
	"europe":   {GL: "gb", HL: "en", Label: "europe_en"},
	"spain":    {GL: "es", HL: "es", Label: "spain_es"},
	"us":       {GL: "us", HL: "en", Label: "us_en"},
	"mexico":   {GL: "mx", HL: "es", Label: "mexico_es"},
	"colombia": {GL: "co", HL: "es", Label: "colombia_es"},
}

// DefaultRegionOrder fixes the fan-out order when no region filter is given:
// South America first, then Europe, then US/Mexico. Colombia is available but
// opt-in, its result quality is too noisy for the standing sweep.
var DefaultRegionOrder = []string{
	"global", "brazil", "argentina", "europe", "spain", "us", "mexico",
}

// englishSpeakingHQ marks headquarters that need no extra native-language pass.
var englishSpeakingHQ = []string{
	"uk", "usa", "canada", "australia", "ireland", "new zealand", "singapore",
}

// hqNativeRegions maps lowercase headquarters country substrings to the
// native-language search market.
var hqNativeRegions = map[string]dto.Region{
	"brazil":      {GL: "br", HL: "pt", Label: "brazil_pt"},
	"argentina":   {GL: "ar", HL: "es", Label: "argentina_es"},
	"colombia":    {GL: "co", HL: "es", Label: "colombia_es"},
	"chile":       {GL: "cl", HL: "es", Label: "chile_es"},
	"peru":        {GL: "pe", HL: "es", Label: "peru_es"},
	"venezuela":   {GL: "ve", HL: "es", Label: "venezuela_es"},
	"mexico":      {GL: "mx", HL: "es", Label: "mexico_es"},
	"spain":       {GL: "es", HL: "es", Label: "spain_es"},
	"germany":     {GL: "de", HL: "de", Label: "germany_de"},
	"france":      {GL: "fr", HL: "fr", Label: "france_fr"},
	"italy":       {GL: "it", HL: "it", Label: "italy_it"},
	"netherlands": {GL: "nl", HL: "nl", Label: "netherlands_nl"},
	"sweden":      {GL: "se", HL: "sv", Label: "sweden_sv"},
	"switzerland": {GL: "ch", HL: "de", Label: "switzerland_de"},
	"poland":      {GL: "pl", HL: "pl", Label: "poland_pl"},
	"japan":       {GL: "jp", HL: "ja", Label: "japan_ja"},
	"china":       {GL: "cn", HL: "zh-cn", Label: "china_zh"},
	"south korea": {GL: "kr", HL: "ko", Label: "korea_ko"},
	"korea":       {GL: "kr", HL: "ko", Label: "korea_ko"},
}

// NativeRegion returns the native-language search market for a
// non-English-speaking headquarters, or nil when none applies.
func NativeRegion(headquarters string) *dto.Region {
	if headquarters == "" {
		return nil
	}
	hq := strings.ToLower(headquarters)
	for _, eng := range englishSpeakingHQ {
		if strings.Contains(hq, eng) {
			return nil
		}
	}
	for country, region := range hqNativeRegions {
		if strings.Contains(hq, country) {
			r := region
			return &r
		}
	}
	return nil
}

// ResolveRegions maps requested region names to search markets, silently
// dropping unknown names. An empty request selects every standing market.
func ResolveRegions(names []string) []dto.Region {
	if len(names) == 0 {
		names = DefaultRegionOrder
	}
	regions := make([]dto.Region, 0, len(names))
	for _, name := range names {
		if region, ok := Regions[strings.ToLower(strings.TrimSpace(name))]; ok {
			regions = append(regions, region)
		}
	}
	return regions
}
