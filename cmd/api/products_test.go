package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"icommerce/internal/domain/catalog"
	"icommerce/internal/domain/products"
	"icommerce/internal/store"
)

type stubProductStore struct {
	products.Store
	createCalled  bool
	updateCalled  bool
	promotionsErr error
}

func (s *stubProductStore) GetProductByID(ctx context.Context, id int64) (*products.Product, error) {
	return &products.Product{ID: id}, nil
}

func (s *stubProductStore) GetPromotionsByProduct(ctx context.Context, productID int64) (map[int64]*products.Promotion, error) {
	if s.promotionsErr != nil {
		return nil, s.promotionsErr
	}
	return map[int64]*products.Promotion{}, nil
}

func (s *stubProductStore) CreateProductAggregate(ctx context.Context, p *products.Product, rows []*products.PersistVariant) (*products.Product, error) {
	s.createCalled = true
	return p, nil
}

func (s *stubProductStore) UpdateProductAggregate(ctx context.Context, p *products.Product, rows []*products.PersistVariant) error {
	s.updateCalled = true
	return nil
}

type stubCatalogStore struct {
	catalog.Store
	values map[int64]catalog.AttributeValue
}

func (s *stubCatalogStore) GetValuesByIDs(ctx context.Context, ids []int64) (map[int64]catalog.AttributeValue, error) {
	return s.values, nil
}

func newTestApp(ps products.Store, cs catalog.Store) *application {
	return &application{
		logger: zap.NewNop().Sugar(),
		store:  store.Storage{Products: ps, Catalog: cs},
	}
}

func productFormRequest(t *testing.T, method, target string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", w.FormDataContentType())
	return r
}

func baseFormFields() map[string]string {
	return map[string]string{
		"name":          "Hydrating Serum",
		"category_id":   "3",
		"brand_id":      "5",
		"description":   "<p>Lightweight serum.</p>",
		"ingredient":    "<p>Hyaluronic acid.</p>",
		"instruction":   "<p>Apply twice daily.</p>",
		"existingImage": "uploads/p.png",

		"variants[0].price":             "200000",
		"variants[0].stock":             "10",
		"variants[0].attributes[0]":     "71",
		"variants[0].existingImage":     "uploads/v0.png",
		"variants[0].existingImages[0]": "uploads/v0-g0.png",
	}
}

func testCatalog() *stubCatalogStore {
	return &stubCatalogStore{values: map[int64]catalog.AttributeValue{
		71: {ID: 71, AttributeID: 7},
		72: {ID: 72, AttributeID: 7},
	}}
}

func TestCreateProductValidFormPersists(t *testing.T) {
	ps := &stubProductStore{}
	app := newTestApp(ps, testCatalog())

	rec := httptest.NewRecorder()
	app.createProductHandler(rec, productFormRequest(t, http.MethodPost, "/v1/store/admin/products", baseFormFields()))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, ps.createCalled)
}

func TestCreateProductRejectedFormNeverPersists(t *testing.T) {
	ps := &stubProductStore{}
	app := newTestApp(ps, testCatalog())

	fields := baseFormFields()
	// second variant repeats the first one's combination
	fields["variants[1].price"] = "250000"
	fields["variants[1].stock"] = "5"
	fields["variants[1].attributes[0]"] = "71"
	fields["variants[1].existingImage"] = "uploads/v1.png"
	fields["variants[1].existingImages[0]"] = "uploads/v1-g0.png"

	rec := httptest.NewRecorder()
	app.createProductHandler(rec, productFormRequest(t, http.MethodPost, "/v1/store/admin/products", fields))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, ps.createCalled)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "variants[0]")
	assert.Contains(t, body.Errors, "variants[1]")
	assert.Contains(t, body.Errors, "variants")
}

func updateRequest(t *testing.T, productID string, fields map[string]string) *http.Request {
	t.Helper()
	req := productFormRequest(t, http.MethodPut, "/v1/store/admin/products/"+productID, fields)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productID", productID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUpdateProductPromotionGuardFailsClosed(t *testing.T) {
	ps := &stubProductStore{promotionsErr: fmt.Errorf("connection reset")}
	app := newTestApp(ps, testCatalog())

	rec := httptest.NewRecorder()
	app.updateProductHandler(rec, updateRequest(t, "9", baseFormFields()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, ps.updateCalled)
}

func TestUpdateProductRejectedFormNeverPersists(t *testing.T) {
	ps := &stubProductStore{}
	app := newTestApp(ps, testCatalog())

	fields := baseFormFields()
	fields["variants[0].price"] = "0"

	rec := httptest.NewRecorder()
	app.updateProductHandler(rec, updateRequest(t, "9", fields))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, ps.updateCalled)
}
