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

type UpdateDiscountPayload struct {
	StartDay string `json:"start_day" validate:"required"`
	EndDay   string `json:"end_day" validate:"required"`
	Percent  int    `json:"percent" validate:"gte=0,lte=100"`
	Price    int64  `json:"price" validate:"gt=0"`
}

// updateDiscountHandler edits a promotion outside the product form. Only a
// promotion whose window has not opened yet can be changed; an active or
// expired one is read-only here as in the form.
func (app *application) updateDiscountHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	discountID, err := strconv.ParseInt(chi.URLParam(r, "discountID"), 10, 64)
	if err != nil || discountID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid discount id"))
		return
	}

	var payload UpdateDiscountPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	promo, err := app.store.Products.GetPromotionByID(ctx, discountID)
	if err != nil {
		if errors.Is(err, products.ErrPromotionNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	now := time.Now()
	if promo.StateAt(now) != products.PendingPromotion {
		app.conflictResponse(w, r, products.ErrPromotionNotEditable)
		return
	}

	variant, err := app.store.Products.GetVariantByID(ctx, promo.VariantID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	draft := products.PromotionDraft{Percent: payload.Percent, Price: payload.Price}
	if payload.StartDay != "" {
		if start, perr := parseDay(payload.StartDay); perr == nil {
			draft.StartAt = start
		} else {
			app.badRequestResponse(w, r, fmt.Errorf("start_day must be YYYY-MM-DD or an RFC3339 timestamp"))
			return
		}
	}
	if payload.EndDay != "" {
		if end, perr := parseDay(payload.EndDay); perr == nil {
			draft.EndAt = end
		} else {
			app.badRequestResponse(w, r, fmt.Errorf("end_day must be YYYY-MM-DD or an RFC3339 timestamp"))
			return
		}
	}

	if fieldErrs := draft.Validate(variant.Price); fieldErrs != nil {
		app.fieldErrorsResponse(w, r, fieldErrs)
		return
	}

	promo.StartAt = draft.StartAt
	promo.EndAt = draft.EndAt
	promo.Percent = draft.Percent
	promo.Price = draft.Price

	if err := app.store.Products.UpdatePromotion(ctx, promo); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, products.PromotionView{
		Promotion: *promo,
		State:     promo.StateAt(now),
	})
}
