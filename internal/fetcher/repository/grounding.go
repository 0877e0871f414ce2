package repository

import (
	"strings"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/urlfilter"
)

// CitedSource is one grounded source chunk from a grounded-search response.
type CitedSource struct {
	URI   string
	Title string
}

// SupportSpan links a half-open text span [Start, End) of the answer to
// candidate sources with per-source confidence scores. ChunkIndices and
// Scores are parallel slices.
type SupportSpan struct {
	Start        int
	End          int
	ChunkIndices []int
	Scores       []float64
}

// MapAnswerToCitations walks the bulleted lines of a grounded answer and
// resolves each to the cited source with the highest confidence among
// overlapping spans. A line whose best citation fails the URL classifier, or
// that has no confidently matched citation at all, is dropped: a noisy answer
// line must never produce an article with a placeholder URL.
//
// The function is deterministic and free of transport concerns so the
// selection policy can be tested directly.
func MapAnswerToCitations(answer string, chunks []CitedSource, supports []SupportSpan) []dto.CandidateArticle {
	var articles []dto.CandidateArticle
	seen := make(map[string]struct{})

	offset := 0
	for _, line := range strings.Split(answer, "\n") {
		start := offset
		end := offset + len(line)
		offset = end + 1 // account for the newline

		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "-") {
			continue
		}

		bestIdx := -1
		maxScore := 0.0
		for _, support := range supports {
			if max(start, support.Start) >= min(end, support.End) {
				continue
			}
			for i, idx := range support.ChunkIndices {
				if i >= len(support.Scores) {
					break
				}
				score := support.Scores[i]
				if score <= maxScore || idx < 0 || idx >= len(chunks) {
					continue
				}
				if chunks[idx].URI == "" || !urlfilter.IsArticle(chunks[idx].URI) {
					continue
				}
				maxScore = score
				bestIdx = idx
			}
		}

		if bestIdx == -1 {
			continue
		}

		uri := chunks[bestIdx].URI
		if _, dup := seen[uri]; dup {
			continue
		}
		seen[uri] = struct{}{}

		snippet := strings.TrimLeft(trimmed, "*- ")
		snippet = strings.ReplaceAll(snippet, "**", "")

		title := chunks[bestIdx].Title
		if title == "" {
			title = snippet
			if len(title) > 100 {
				title = title[:100]
			}
		}

		articles = append(articles, dto.CandidateArticle{
			Title:        title,
			Link:         uri,
			Snippet:      snippet,
			Date:         time.Now().UTC().Format("2006-01-02"),
			SearchRegion: dto.GroundedRegionLabel,
		})
	}

	return articles
}
