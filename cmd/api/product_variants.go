package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"icommerce/internal/domain/products"
)

// listAdminVariantsHandler hydrates the update form: every variant of the
// product with attribute choices in slot order, sell state, and promotion
// state, so the client never re-derives editability from raw fields.
func (app *application) listAdminVariantsHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid product id"))
		return
	}

	variants, err := app.store.Products.ListAdminVariants(r.Context(), productID, time.Now())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	for _, v := range variants {
		app.resolveVariantURLs(&v.Variant)
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"variants": variants,
		"count":    len(variants),
	})
}

// Stop-sell and resume-sell are the only mutators of a variant's sell state.
// They bypass the product form entirely and never affect its validity.

func (app *application) stopVariantHandler(w http.ResponseWriter, r *http.Request) {
	app.transitionVariant(w, r, products.Selling, products.Stopped)
}

func (app *application) continueVariantHandler(w http.ResponseWriter, r *http.Request) {
	app.transitionVariant(w, r, products.Stopped, products.Selling)
}

func (app *application) transitionVariant(w http.ResponseWriter, r *http.Request, from, to products.SellState) {
	ctx := r.Context()

	variantID, err := strconv.ParseInt(chi.URLParam(r, "variantID"), 10, 64)
	if err != nil || variantID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid variant id"))
		return
	}

	if _, err := app.store.Products.GetVariantByID(ctx, variantID); err != nil {
		if errors.Is(err, products.ErrVariantNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Products.TransitionSellState(ctx, variantID, from, to); err != nil {
		if errors.Is(err, products.ErrInvalidTransition) {
			app.conflictResponse(w, r, fmt.Errorf("variant is not currently %s", from))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	variant, err := app.store.Products.GetVariantByID(ctx, variantID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.resolveVariantURLs(variant)
	app.jsonResponse(w, http.StatusOK, variant)
}
