package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"icommerce/internal/domain/products"
	"icommerce/internal/helpers"
)

// The whole aggregate arrives in one payload: product fields plus every
// variant with its images. Individual files are capped at 10MB by
// checkImageFile; this caps the submission as a whole.
const maxProductFormBytes = 64 * 1024 * 1024

// createProductHandler runs the full submission pipeline: parse the indexed
// multipart grammar, resolve attribute values against the catalog, validate
// the aggregate in one pass, and only then upload files and persist. Any
// validation failure aborts before a single byte reaches Cloudinary or the
// database.
func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxProductFormBytes)
	if err := r.ParseMultipartForm(32 * 1024 * 1024); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	errs := make(products.FieldErrors)
	form := parseProductForm(r.MultipartForm, errs)

	if !app.resolveAttributeSlots(w, r, form, errs) {
		return
	}
	app.checkFormImages(form, errs)
	for field, msg := range form.Validate() {
		errs.Add(field, msg)
	}
	if errs.Any() {
		app.fieldErrorsResponse(w, r, errs)
		return
	}

	product, rows, uploaded, err := app.uploadAndAssemble(ctx, form)
	if err != nil {
		app.cleanupUploads(uploaded)
		app.internalServerError(w, r, err)
		return
	}

	created, err := app.store.Products.CreateProductAggregate(ctx, product, rows)
	if err != nil {
		app.cleanupUploads(uploaded)
		if pgErr, ok := err.(*pgconn.PgError); ok {
			switch pgErr.Code {
			case "23505":
				app.conflictResponse(w, r, fmt.Errorf("product with the same name already exists"))
				return
			case "23503":
				app.badRequestResponse(w, r, fmt.Errorf("unknown brand or category"))
				return
			}
		}
		app.internalServerError(w, r, fmt.Errorf("create product: %w", err))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/store/admin/products/%d", created.ID))
	app.jsonResponse(w, http.StatusCreated, created)
}

// updateProductHandler is the same pipeline keyed by product id, plus the
// update-only rules: existing image references satisfy required image fields,
// and a variant with an already-active promotion window cannot have its
// discount edited through the form.
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid product id"))
		return
	}

	if _, err := app.store.Products.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProductFormBytes)
	if err := r.ParseMultipartForm(32 * 1024 * 1024); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	errs := make(products.FieldErrors)
	form := parseProductForm(r.MultipartForm, errs)
	form.ID = productID

	if !app.resolveAttributeSlots(w, r, form, errs) {
		return
	}
	app.checkFormImages(form, errs)
	if !app.checkActivePromotions(w, r, productID, form, errs) {
		return
	}
	for field, msg := range form.Validate() {
		errs.Add(field, msg)
	}
	if errs.Any() {
		app.fieldErrorsResponse(w, r, errs)
		return
	}

	product, rows, uploaded, err := app.uploadAndAssemble(ctx, form)
	if err != nil {
		app.cleanupUploads(uploaded)
		app.internalServerError(w, r, err)
		return
	}
	product.ID = productID

	if err := app.store.Products.UpdateProductAggregate(ctx, product, rows); err != nil {
		app.cleanupUploads(uploaded)
		switch {
		case errors.Is(err, products.ErrProductNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, products.ErrVariantNotFound):
			app.badRequestResponse(w, r, fmt.Errorf("variant does not belong to this product"))
		default:
			app.internalServerError(w, r, fmt.Errorf("update product: %w", err))
		}
		return
	}

	detail, err := app.store.Products.GetProductDetail(ctx, productID, time.Now())
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("fetch updated product: %w", err))
		return
	}
	app.resolveDisplayURLs(detail)
	app.jsonResponse(w, http.StatusOK, detail)
}

func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid product id"))
		return
	}

	detail, err := app.store.Products.GetProductDetail(r.Context(), productID, time.Now())
	if err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}
	app.resolveDisplayURLs(detail)
	app.jsonResponse(w, http.StatusOK, detail)
}

// resolveDisplayURLs maps stored image references onto displayable URLs before
// the aggregate leaves the API; bare filenames pick up the image hosting base.
func (app *application) resolveDisplayURLs(detail *products.ProductDetail) {
	detail.Product.ImageURL = helpers.DisplayURL(app.config.imageBaseURL, detail.Product.ImageURL)
	for _, v := range detail.Variants {
		app.resolveVariantURLs(&v.Variant)
	}
}

func (app *application) resolveVariantURLs(v *products.Variant) {
	v.ImageURL = helpers.DisplayURL(app.config.imageBaseURL, v.ImageURL)
	for i, u := range v.GalleryURLs {
		v.GalleryURLs[i] = helpers.DisplayURL(app.config.imageBaseURL, u)
	}
}

// resolveAttributeSlots turns the wire's value ids into full slots. Every
// submitted value must exist in the catalog; its owning attribute fills the
// slot's definition so parity and uniqueness can be checked. Returns false
// only on a storage failure, which it reports itself.
func (app *application) resolveAttributeSlots(w http.ResponseWriter, r *http.Request, form *products.ProductForm, errs products.FieldErrors) bool {
	ctx := r.Context()
	var ids []int64
	for _, row := range form.Variants.Rows {
		for _, slot := range row.Slots {
			if slot.ValueID != 0 {
				ids = append(ids, slot.ValueID)
			}
		}
	}

	values, err := app.store.Catalog.GetValuesByIDs(ctx, ids)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("resolve attribute values: %w", err))
		return false
	}

	for i, row := range form.Variants.Rows {
		if len(row.Slots) == 0 {
			errs.Add(fmt.Sprintf("variants[%d].attributes", i), "at least one attribute is required")
			continue
		}
		for j := range row.Slots {
			slot := &row.Slots[j]
			field := fmt.Sprintf("variants[%d].attributes[%d]", i, j)
			if slot.ValueID == 0 {
				errs.Add(field, "attribute value is required")
				continue
			}
			value, ok := values[slot.ValueID]
			if !ok {
				errs.Add(field, "unknown attribute value")
				continue
			}
			slot.AttributeID = value.AttributeID
		}
	}
	return true
}

// checkFormImages applies the type/size constraints to every freshly captured
// file, attaching failures to the owning field.
func (app *application) checkFormImages(form *products.ProductForm, errs products.FieldErrors) {
	if form.Image.IsNew() {
		if err := checkImageFile(form.Image.NewFile); err != nil {
			errs.Add("image", err.Error())
		}
	}
	for i, row := range form.Variants.Rows {
		prefix := fmt.Sprintf("variants[%d]", i)
		if row.PrimaryImage.IsNew() {
			if err := checkImageFile(row.PrimaryImage.NewFile); err != nil {
				errs.Add(prefix+".image", err.Error())
			}
		}
		for _, ref := range row.Gallery {
			if ref.IsNew() {
				if err := checkImageFile(ref.NewFile); err != nil {
					errs.Add(prefix+".images", err.Error())
				}
			}
		}
	}
}

// checkActivePromotions blocks form edits to promotions whose window is
// already open; those change only through the discount endpoint. A storage
// failure aborts the request: the guard never fails open. Returns false after
// reporting the failure itself.
func (app *application) checkActivePromotions(w http.ResponseWriter, r *http.Request, productID int64, form *products.ProductForm, errs products.FieldErrors) bool {
	promos, err := app.store.Products.GetPromotionsByProduct(r.Context(), productID)
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("load promotions: %w", err))
		return false
	}
	now := time.Now()
	for i, row := range form.Variants.Rows {
		if row.ID == 0 || row.Promotion == nil {
			continue
		}
		if promo, ok := promos[row.ID]; ok && promo.StateAt(now) == products.ActivePromotion {
			errs.Add(fmt.Sprintf("variants[%d].discount", i), products.ErrPromotionNotEditable.Error())
		}
	}
	return true
}

// uploadAndAssemble turns the validated form into persistable records:
// every new file is uploaded and every image field collapses to its final
// URL (new upload wins over a still-present existing reference). The returned
// URL list covers exactly the uploads made, for cleanup if persistence fails.
func (app *application) uploadAndAssemble(ctx context.Context, form *products.ProductForm) (*products.Product, []*products.PersistVariant, []string, error) {
	var uploaded []string

	resolve := func(ref products.ImageRef, folder string) (string, error) {
		if ref.IsNew() {
			url, err := app.uploadImage(ctx, ref.NewFile, folder)
			if err != nil {
				return "", err
			}
			uploaded = append(uploaded, url)
			return url, nil
		}
		return ref.Existing, nil
	}

	imageURL, err := resolve(form.Image, "primary")
	if err != nil {
		return nil, nil, uploaded, err
	}

	product := &products.Product{
		ID:          form.ID,
		Name:        form.Name,
		Description: form.Description,
		Ingredient:  form.Ingredient,
		Instruction: form.Instruction,
		ImageURL:    imageURL,
		CategoryID:  form.CategoryID,
		BrandID:     form.BrandID,
	}

	rows := make([]*products.PersistVariant, 0, len(form.Variants.Rows))
	for i, row := range form.Variants.Rows {
		variantImage, err := resolve(row.PrimaryImage, fmt.Sprintf("variant_%d", i))
		if err != nil {
			return nil, nil, uploaded, err
		}
		gallery := make([]string, 0, len(row.Gallery))
		for _, ref := range row.Gallery {
			url, err := resolve(ref, fmt.Sprintf("variant_%d/gallery", i))
			if err != nil {
				return nil, nil, uploaded, err
			}
			gallery = append(gallery, url)
		}
		rows = append(rows, &products.PersistVariant{
			ID:          row.ID,
			Price:       row.Price,
			Stock:       row.Stock,
			ImageURL:    variantImage,
			GalleryURLs: gallery,
			Slots:       row.Slots,
			Promotion:   row.Promotion,
		})
	}
	return product, rows, uploaded, nil
}
