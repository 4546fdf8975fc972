package main

import (
	"errors"
	"fmt"
	"net/http"

	"icommerce/internal/domain/catalog"
)

// listAttributesHandler returns the full attribute catalog with values in
// display order; the product form fetches this once per editing session.
func (app *application) listAttributesHandler(w http.ResponseWriter, r *http.Request) {
	attrs, err := app.store.Catalog.ListAttributes(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, map[string]any{
		"attributes": attrs,
		"count":      len(attrs),
	})
}

type CreateAttributePayload struct {
	Name   string   `json:"name" validate:"required,max=100"`
	Values []string `json:"values" validate:"required,min=1,dive,required,max=100"`
}

func (app *application) createAttributeHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateAttributePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	name := catalog.Canonicalize(payload.Name)
	if name == "" {
		app.badRequestResponse(w, r, fmt.Errorf("attribute name is required"))
		return
	}

	exists, err := app.store.Catalog.AttributeExistsByName(ctx, name)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if exists {
		app.conflictResponse(w, r, fmt.Errorf("attribute %q already exists", name))
		return
	}

	values, fieldErrs := catalog.ValidateNewValues(nil, payload.Values)
	if fieldErrs != nil {
		app.fieldErrorsResponse(w, r, fieldErrs)
		return
	}

	created, err := app.store.Catalog.CreateAttribute(ctx, name, values)
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateAttribute) {
			app.conflictResponse(w, r, fmt.Errorf("attribute %q already exists", name))
			return
		}
		app.internalServerError(w, r, fmt.Errorf("create attribute: %w", err))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/attributes/%d", created.ID))
	app.jsonResponse(w, http.StatusCreated, created)
}

type AppendValuesPayload struct {
	AttributeID int64    `json:"attribute_id" validate:"required,gt=0"`
	Values      []string `json:"values" validate:"required,min=1,dive,max=100"`
}

// appendAttributeValuesHandler adds values to an existing attribute. Each
// proposed value is checked against the attribute's current labels; invalid
// entries are flagged per field and nothing is written until all are clean.
func (app *application) appendAttributeValuesHandler(w http.ResponseWriter, r *http.Request) {
	var payload AppendValuesPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	attr, err := app.store.Catalog.GetAttributeByID(ctx, payload.AttributeID)
	if err != nil {
		if errors.Is(err, catalog.ErrAttributeNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	values, fieldErrs := catalog.ValidateNewValues(attr.Values, payload.Values)
	if fieldErrs != nil {
		app.fieldErrorsResponse(w, r, fieldErrs)
		return
	}

	appended, err := app.store.Catalog.AppendValues(ctx, attr.ID, values)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("append attribute values: %w", err))
		return
	}

	app.jsonResponse(w, http.StatusCreated, map[string]any{
		"attribute_id": attr.ID,
		"values":       appended,
	})
}
