package repository

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
)

var jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseExtractionResponse decodes a model reply into an extraction result.
// Models wrap JSON in markdown fences or surround it with prose often enough
// that both are stripped before decoding.
func ParseExtractionResponse(raw string) (*dto.ExtractionResult, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var result dto.ExtractionResult
	if err := json.Unmarshal([]byte(text), &result); err == nil {
		return &result, nil
	}

	match := jsonObjectRe.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("no JSON object in extraction response")
	}
	if err := json.Unmarshal([]byte(match), &result); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}
	return &result, nil
}
