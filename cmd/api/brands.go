package main

import (
	"fmt"
	"net/http"

	"icommerce/internal/params"
)

func (app *application) listBrandsHandler(w http.ResponseWriter, r *http.Request) {
	pagination := params.ParsePagination(r.URL.Query())

	brands, total, err := app.store.Products.ListBrands(r.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("failed to fetch brands: %w", err))
		return
	}
	pagination.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"brands":     brands,
		"pagination": pagination,
	})
}
