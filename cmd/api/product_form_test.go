package main

import (
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icommerce/internal/domain/products"
)

func multipartForm(values map[string][]string, files map[string][]*multipart.FileHeader) *multipart.Form {
	if values == nil {
		values = map[string][]string{}
	}
	if files == nil {
		files = map[string][]*multipart.FileHeader{}
	}
	return &multipart.Form{Value: values, File: files}
}

func TestParseProductFormMapsFields(t *testing.T) {
	form := multipartForm(map[string][]string{
		"name":        {"  Hydrating Serum  "},
		"category_id": {"3"},
		"brand_id":    {"5"},
		"description": {"<p>Lightweight serum.</p>"},
		"ingredient":  {"<p>Hyaluronic acid.</p>"},
		"instruction": {"<p>Apply twice daily.</p>"},

		"variants[0].price":              {"200000"},
		"variants[0].stock":              {"10"},
		"variants[0].attributes[0]":      {"71"},
		"variants[0].attributes[1]":      {"81"},
		"variants[0].existingImage":      {"uploads/v0.png"},
		"variants[0].existingImages[0]":  {"uploads/v0-g0.png"},
		"variants[0].existingImages[1]":  {"uploads/v0-g1.png"},
		"variants[0].discount.percent":   {"25"},
		"variants[0].discount.price":     {"150000"},
		"variants[0].discount.start_day": {"2026-09-01"},
		"variants[0].discount.end_day":   {"2026-09-15"},

		"variants[1].id":            {"42"},
		"variants[1].price":         {"250000"},
		"variants[1].stock":         {"0"},
		"variants[1].attributes[0]": {"72"},
		"variants[1].attributes[1]": {""},
		"variants[1].existingImage": {"uploads/v1.png"},
	}, map[string][]*multipart.FileHeader{
		"image":              {{Filename: "product.png"}},
		"variants[1].images": {{Filename: "g-a.png"}, {Filename: "g-b.png"}},
	})

	errs := make(products.FieldErrors)
	f := parseProductForm(form, errs)

	assert.Empty(t, errs)
	assert.Equal(t, "Hydrating Serum", f.Name)
	assert.Equal(t, int64(3), f.CategoryID)
	assert.Equal(t, int64(5), f.BrandID)
	assert.True(t, f.Image.IsNew())

	require.Len(t, f.Variants.Rows, 2)

	first := f.Variants.Rows[0]
	assert.Zero(t, first.ID)
	assert.Equal(t, int64(200000), first.Price)
	assert.Equal(t, 10, first.Stock)
	require.Len(t, first.Slots, 2)
	assert.Equal(t, int64(71), first.Slots[0].ValueID)
	assert.Equal(t, int64(81), first.Slots[1].ValueID)
	assert.Equal(t, "uploads/v0.png", first.PrimaryImage.Existing)
	require.Len(t, first.Gallery, 2)
	assert.Equal(t, "uploads/v0-g0.png", first.Gallery[0].Existing)
	assert.Equal(t, "uploads/v0-g1.png", first.Gallery[1].Existing)

	require.NotNil(t, first.Promotion)
	assert.Equal(t, 25, first.Promotion.Percent)
	assert.Equal(t, int64(150000), first.Promotion.Price)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), first.Promotion.StartAt)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), first.Promotion.EndAt)

	second := f.Variants.Rows[1]
	assert.Equal(t, int64(42), second.ID)
	require.Len(t, second.Slots, 2)
	assert.Equal(t, int64(72), second.Slots[0].ValueID)
	assert.Zero(t, second.Slots[1].ValueID)
	assert.Nil(t, second.Promotion)
	require.Len(t, second.Gallery, 2)
	assert.True(t, second.Gallery[0].IsNew())
	assert.Equal(t, "g-a.png", second.Gallery[0].NewFile.Filename)
	assert.Equal(t, "g-b.png", second.Gallery[1].NewFile.Filename)
}

func TestParseProductFormStopsAtFirstMissingVariant(t *testing.T) {
	form := multipartForm(map[string][]string{
		"variants[0].price": {"100"},
		"variants[2].price": {"300"}, // unreachable: index 1 is absent
	}, nil)

	f := parseProductForm(form, make(products.FieldErrors))

	assert.Len(t, f.Variants.Rows, 1)
}

func TestParseProductFormFlagsMalformedNumbers(t *testing.T) {
	form := multipartForm(map[string][]string{
		"category_id":               {"perfume"},
		"variants[0].price":         {"cheap"},
		"variants[0].stock":         {"many"},
		"variants[0].attributes[0]": {"red"},
	}, nil)

	errs := make(products.FieldErrors)
	parseProductForm(form, errs)

	assert.Contains(t, errs, "category_id")
	assert.Contains(t, errs, "variants[0].price")
	assert.Contains(t, errs, "variants[0].stock")
	assert.Contains(t, errs, "variants[0].attributes[0]")
}

func TestParsePromotionDraftRequiresBothAmounts(t *testing.T) {
	form := multipartForm(map[string][]string{
		"variants[0].price":              {"200000"},
		"variants[0].discount.start_day": {"2026-09-01"},
		"variants[0].discount.end_day":   {"2026-09-15"},
	}, nil)

	errs := make(products.FieldErrors)
	f := parseProductForm(form, errs)

	require.Len(t, f.Variants.Rows, 1)
	require.NotNil(t, f.Variants.Rows[0].Promotion)
	assert.Contains(t, errs, "variants[0].discount.percent")
	assert.Contains(t, errs, "variants[0].discount.price")
}

func TestParsePromotionDraftFlagsBadDates(t *testing.T) {
	form := multipartForm(map[string][]string{
		"variants[0].price":              {"200000"},
		"variants[0].discount.percent":   {"25"},
		"variants[0].discount.price":     {"150000"},
		"variants[0].discount.start_day": {"01/09/2026"},
		"variants[0].discount.end_day":   {"15-09-2026"},
	}, nil)

	errs := make(products.FieldErrors)
	parseProductForm(form, errs)

	assert.Equal(t, "start date must be YYYY-MM-DD or an RFC3339 timestamp", errs["variants[0].discount.start_day"])
	assert.Equal(t, "end date must be YYYY-MM-DD or an RFC3339 timestamp", errs["variants[0].discount.end_day"])
}

func TestParsePromotionDraftAbsentWhenNoFields(t *testing.T) {
	form := multipartForm(map[string][]string{
		"variants[0].price": {"200000"},
		"variants[0].stock": {"5"},
	}, nil)

	errs := make(products.FieldErrors)
	f := parseProductForm(form, errs)

	require.Len(t, f.Variants.Rows, 1)
	assert.Nil(t, f.Variants.Rows[0].Promotion)
	assert.Empty(t, errs)
}

func TestParseDayAcceptsBothFormats(t *testing.T) {
	day, err := parseDay("2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), day)

	stamp, err := parseDay("2026-09-01T08:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC), stamp)

	_, err = parseDay("01/09/2026")
	assert.Error(t, err)
}
