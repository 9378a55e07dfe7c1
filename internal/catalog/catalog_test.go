package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducts() []Product {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Product{
		{ID: "p1", Title: "Tricyclazole 75% WP", Category: CategoryFungicide, Composition: "Tricyclazole 75%", Crops: []string{"Rice"}, Tags: []string{"rice blast", "fungal diseases"}, CreatedAt: base},
		{ID: "p2", Title: "Mancozeb 75% WP", Category: CategoryFungicide, Composition: "Mancozeb 75%", Crops: []string{"Rice", "Potato"}, Tags: []string{"early blight", "brown spot"}, CreatedAt: base.Add(time.Minute)},
		{ID: "p3", Title: "Imidacloprid 17.8% SL", Category: CategoryInsecticide, Composition: "Imidacloprid 17.8%", Crops: []string{"Cotton"}, Tags: []string{"aphids", "whitefly"}, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "p4", Title: "Urea 46% N", Category: CategoryFertilizer, Composition: "Nitrogen 46%", Crops: []string{"All Crops"}, Tags: []string{"nitrogen"}, Description: "Top dressing for deficiency", CreatedAt: base.Add(3 * time.Minute)},
	}
}

func newTestCatalog() *Catalog {
	return New(NewMemorySource(testProducts()), nil)
}

func ids(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFindByTextMatch(t *testing.T) {
	c := newTestCatalog()
	ctx := context.Background()

	got, err := c.FindByTextMatch(ctx, []string{FieldTitle, FieldDescription, FieldTags}, "RICE BLAST", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(got))

	got, err = c.FindByTextMatch(ctx, []string{FieldTitle}, "75%", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids(got))

	got, err = c.FindByTextMatch(ctx, []string{FieldTitle}, "75%", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(got))
}

func TestFindByTextMatch_TreatsPatternLiterally(t *testing.T) {
	c := newTestCatalog()
	got, err := c.FindByTextMatch(context.Background(), []string{FieldTitle}, "17.8%", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, ids(got))

	got, err = c.FindByTextMatch(context.Background(), []string{FieldTitle}, "75.", 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = c.FindByTextMatch(context.Background(), []string{FieldTitle}, "(", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindByTextMatch_BlankPattern(t *testing.T) {
	got, err := newTestCatalog().FindByTextMatch(context.Background(), []string{FieldTitle}, "  ", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindByField(t *testing.T) {
	c := newTestCatalog()
	ctx := context.Background()

	got, err := c.FindByField(ctx, FieldCategory, "Fungicide", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids(got))

	got, err = c.FindByField(ctx, FieldCrops, "rice", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids(got))

	got, err = c.FindByField(ctx, FieldCrops, "Wheat", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindAny(t *testing.T) {
	got, err := newTestCatalog().FindAny(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(got))
}

func TestGetAndGetMany(t *testing.T) {
	c := newTestCatalog()
	ctx := context.Background()

	p, err := c.Get(ctx, "p3")
	require.NoError(t, err)
	assert.Equal(t, "Imidacloprid 17.8% SL", p.Title)

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)

	got, err := c.GetMany(ctx, []string{"p4", "missing", "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p4", "p1"}, ids(got))

	got, err = c.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestList(t *testing.T) {
	c := newTestCatalog()
	ctx := context.Background()

	page, err := c.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.Pages)
	assert.Equal(t, []string{"p4", "p3", "p2", "p1"}, ids(page.Products))

	page, err = c.List(ctx, ListFilter{Crop: "ric", Limit: 1, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, []string{"p1"}, ids(page.Products))

	page, err = c.List(ctx, ListFilter{Search: "deficiency"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p4"}, ids(page.Products))

	page, err = c.List(ctx, ListFilter{Category: "insecticide", Page: 9})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Empty(t, page.Products)
}

func TestRecommend(t *testing.T) {
	c := newTestCatalog()
	got, err := c.Recommend(context.Background(), RecommendRequest{Disease: "blight", Crop: "potato", Category: "fungicide"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids(got))

	got, err = c.Recommend(context.Background(), RecommendRequest{})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestSeedProducts(t *testing.T) {
	products, err := SeedProducts()
	require.NoError(t, err)
	require.NotEmpty(t, products)

	seen := make(map[string]bool)
	for _, p := range products {
		assert.NotEmpty(t, p.ID)
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		assert.True(t, p.Category.Valid(), "product %s has category %q", p.ID, p.Category)
		assert.False(t, p.CreatedAt.IsZero())
	}

	c := New(NewMemorySource(products), nil)
	got, err := c.FindByTextMatch(context.Background(), []string{FieldTitle}, "Tricyclazole", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestMemorySource_ReturnsCopy(t *testing.T) {
	src := NewMemorySource(testProducts())
	got, err := src.All(context.Background())
	require.NoError(t, err)
	got[0].Title = "changed"

	again, err := src.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Tricyclazole 75% WP", again[0].Title)
}

func TestMemorySource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemorySource(testProducts()).All(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
