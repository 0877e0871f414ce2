package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/entity"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNewsRepo struct {
	urls    map[string]struct{}
	titles  map[string]struct{}
	created []*entity.CompetitorNews
	deleted bool
	lastAt  *time.Time
}

func newFakeNewsRepo() *fakeNewsRepo {
	return &fakeNewsRepo{
		urls:   make(map[string]struct{}),
		titles: make(map[string]struct{}),
	}
}

func (f *fakeNewsRepo) AllSourceURLs(ctx context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(f.urls))
	for u := range f.urls {
		out[u] = struct{}{}
	}
	return out, nil
}

func (f *fakeNewsRepo) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	_, ok := f.urls[sourceURL]
	return ok, nil
}

func (f *fakeNewsRepo) ExistsByTitle(ctx context.Context, competitorID, title string) (bool, error) {
	_, ok := f.titles[competitorID+"|"+title]
	return ok, nil
}

func (f *fakeNewsRepo) CreateIgnoreConflict(ctx context.Context, news *entity.CompetitorNews) error {
	if _, ok := f.urls[news.SourceURL]; ok {
		return nil
	}
	f.urls[news.SourceURL] = struct{}{}
	f.titles[news.CompetitorID+"|"+news.Title] = struct{}{}
	f.created = append(f.created, news)
	return nil
}

func (f *fakeNewsRepo) DeleteAll(ctx context.Context) error {
	f.urls = make(map[string]struct{})
	f.titles = make(map[string]struct{})
	f.created = nil
	f.deleted = true
	return nil
}

func (f *fakeNewsRepo) LastExtractedAt(ctx context.Context) (*time.Time, error) {
	return f.lastAt, nil
}

var gateNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newTestGate(repo *fakeNewsRepo) *Gate {
	g := NewGate(repo, logger.NewNop())
	g.now = func() time.Time { return gateNow }
	return g
}

func validItem() dto.NewsItem {
	return dto.NewsItem{
		EventType:   "Market Expansion",
		Category:    "Expansion",
		Title:       "Okuma opens Brazil subsidiary",
		Summary:     "Okuma established a direct sales subsidiary in Sao Paulo.",
		ThreatLevel: 4,
		Date:        "2026-08-20",
		SourceURL:   "https://news.example.org/okuma-brazil",
		Region:      "SOUTH_AMERICA",
	}
}

func TestGate_SavesValidItem(t *testing.T) {
	repo := newFakeNewsRepo()
	g := newTestGate(repo)

	status, err := g.Save(context.Background(), "comp-1", validItem(), 30)
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, status)
	require.Len(t, repo.created, 1)

	news := repo.created[0]
	assert.Equal(t, "comp-1", news.CompetitorID)
	assert.Equal(t, "Okuma opens Brazil subsidiary", news.Title)
	assert.Equal(t, 4, news.ThreatLevel)
	assert.Equal(t, gateNow, news.ExtractedAt)
	assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), news.Date)
	assert.True(t, len(news.ID) == 25 && news.ID[0] == 'c')
}

func TestGate_RejectsInvalidURL(t *testing.T) {
	g := newTestGate(newFakeNewsRepo())

	for _, url := range []string{"", "https://example.com/placeholder"} {
		item := validItem()
		item.SourceURL = url
		status, err := g.Save(context.Background(), "comp-1", item, 30)
		require.NoError(t, err)
		assert.Equal(t, StatusInvalidURL, status)
	}
}

func TestGate_RejectsDuplicateURL(t *testing.T) {
	repo := newFakeNewsRepo()
	repo.urls["https://news.example.org/okuma-brazil"] = struct{}{}
	g := newTestGate(repo)

	status, err := g.Save(context.Background(), "comp-1", validItem(), 30)
	require.NoError(t, err)
	assert.Equal(t, StatusDuplicateURL, status)
}

func TestGate_RejectsDuplicateTitle(t *testing.T) {
	repo := newFakeNewsRepo()
	repo.titles["comp-1|Okuma opens Brazil subsidiary"] = struct{}{}
	g := newTestGate(repo)

	status, err := g.Save(context.Background(), "comp-1", validItem(), 30)
	require.NoError(t, err)
	assert.Equal(t, StatusDuplicateTitle, status)

	// Same title under another competitor is fine.
	status, err = g.Save(context.Background(), "comp-2", validItem(), 30)
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, status)
}

func TestGate_RejectsStaleItem(t *testing.T) {
	g := newTestGate(newFakeNewsRepo())

	item := validItem()
	item.Date = "2026-06-01"
	status, err := g.Save(context.Background(), "comp-1", item, 30)
	require.NoError(t, err)
	assert.Equal(t, StatusTooOld, status)
}

func TestGate_DefaultCutoffIsEighteenMonths(t *testing.T) {
	g := newTestGate(newFakeNewsRepo())

	item := validItem()
	item.Date = "2025-06-01"
	status, err := g.Save(context.Background(), "comp-1", item, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, status)

	item = validItem()
	item.SourceURL = "https://news.example.org/okuma-old"
	item.Title = "Okuma historic award"
	item.Date = "2024-06-01"
	status, err = g.Save(context.Background(), "comp-1", item, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusTooOld, status)
}

func TestGate_ClampsFutureDate(t *testing.T) {
	repo := newFakeNewsRepo()
	g := newTestGate(repo)

	item := validItem()
	item.Date = "2027-01-01"
	status, err := g.Save(context.Background(), "comp-1", item, 30)
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, status)
	assert.Equal(t, gateNow, repo.created[0].Date)
}

func TestGate_ReanchorsBogusGroundedDate(t *testing.T) {
	repo := newFakeNewsRepo()
	g := newTestGate(repo)

	item := validItem()
	item.Date = "2005-01-01"
	item.SearchRegion = dto.GroundedRegionLabel
	status, err := g.Save(context.Background(), "comp-1", item, 30)
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, status)
	assert.Equal(t, gateNow, repo.created[0].Date)

	// A keyword result with the same bogus date is discarded.
	item = validItem()
	item.SourceURL = "https://news.example.org/okuma-other"
	item.Title = "Okuma ancient news"
	item.Date = "2005-01-01"
	item.SearchRegion = "brazil_pt"
	status, err = g.Save(context.Background(), "comp-1", item, 30)
	require.NoError(t, err)
	assert.Equal(t, StatusTooOld, status)
}

func TestGate_UnparseableDateFallsBackToNow(t *testing.T) {
	repo := newFakeNewsRepo()
	g := newTestGate(repo)

	item := validItem()
	item.Date = "sometime last week"
	status, err := g.Save(context.Background(), "comp-1", item, 30)
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, status)
	assert.Equal(t, gateNow, repo.created[0].Date)
}

func TestGate_ClampsThreatLevelAndSanitizes(t *testing.T) {
	repo := newFakeNewsRepo()
	g := newTestGate(repo)

	item := validItem()
	item.ThreatLevel = 9
	item.Title = "Okuma “smart factory” launch"
	item.EventType = ""
	status, err := g.Save(context.Background(), "comp-1", item, 30)
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, status)

	news := repo.created[0]
	assert.Equal(t, 5, news.ThreatLevel)
	assert.Equal(t, `Okuma "smart factory" launch`, news.Title)
	assert.Equal(t, "Unknown", news.EventType)

	item = validItem()
	item.SourceURL = "https://news.example.org/okuma-low"
	item.Title = "Okuma minor note"
	item.ThreatLevel = 0
	_, err = g.Save(context.Background(), "comp-1", item, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.created[1].ThreatLevel)
}

func TestGate_DetailsCarryCategory(t *testing.T) {
	repo := newFakeNewsRepo()
	g := newTestGate(repo)

	item := validItem()
	item.Details = dto.NewsItemDetails{
		Location:       "Sao Paulo, Brazil",
		FinancialValue: "$25M",
		Partners:       []string{"Distribuidora Sul"},
		Products:       []string{"MULTUS U3000"},
	}
	_, err := g.Save(context.Background(), "comp-1", item, 30)
	require.NoError(t, err)

	var details dto.NewsItemDetails
	require.NoError(t, json.Unmarshal(repo.created[0].Details, &details))
	assert.Equal(t, "Expansion", details.Category)
	assert.Equal(t, "Sao Paulo, Brazil", details.Location)
	assert.Equal(t, []string{"Distribuidora Sul"}, details.Partners)
}

func TestEffectiveDaysBack(t *testing.T) {
	assert.Equal(t, 540, EffectiveDaysBack("CNC Machine Tools", 7))
	assert.Equal(t, 600, EffectiveDaysBack("Industrial Machinery", 600))
	assert.Equal(t, 7, EffectiveDaysBack("Logistics Software", 7))
	assert.Equal(t, 0, EffectiveDaysBack("", 0))
}
