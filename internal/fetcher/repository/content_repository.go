package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/config"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
)

type articleContentRepository struct {
	cfg    *config.Config
	logger *logger.Logger
	client *http.Client
}

// NewArticleContentRepository creates an ArticleContentRepository that fetches
// article pages and extracts the readable body text.
func NewArticleContentRepository(cfg *config.Config, log *logger.Logger) ArticleContentRepository {
	return &articleContentRepository{
		cfg:    cfg,
		logger: log,
		client: &http.Client{Timeout: 20 * time.Second},
	}
}

func (r *articleContentRepository) FetchExcerpt(ctx context.Context, url string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = r.cfg.Fetcher.MaxContentBodySize
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for article: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch article content, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article content: %w", err)
	}
	content := doc.Content()
	docHTML, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse article content: %w", err)
	}

	text := strings.Join(strings.Fields(docHTML.Text()), " ")
	text = utils.SanitizeText(text)
	return utils.Truncate(text, maxLen), nil
}
