package main

import (
	"fmt"
	"net/http"

	"icommerce/internal/params"
)

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	pagination := params.ParsePagination(r.URL.Query())

	categories, total, err := app.store.Products.ListCategories(r.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("failed to fetch categories: %w", err))
		return
	}
	pagination.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"categories": categories,
		"pagination": pagination,
	})
}
