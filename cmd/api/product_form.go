package main

import (
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"icommerce/internal/domain/products"
)

// The product form arrives as one multipart payload with indexed field names:
//
//	name, category_id, brand_id, description, ingredient, instruction,
//	image (file), existingImage,
//	variants[i].id, variants[i].price, variants[i].stock,
//	variants[i].attributes[j]         attribute value id at slot j
//	variants[i].discount.percent, variants[i].discount.price,
//	variants[i].discount.start_day, variants[i].discount.end_day,
//	variants[i].image (file), variants[i].existingImage,
//	variants[i].images (files), variants[i].existingImages[k]
//
// Attribute ids are not resent: slot position j is shared across all variants
// and each value id resolves to its owning attribute server-side.
const maxFormVariants = 50

func formValue(form *multipart.Form, key string) (string, bool) {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return strings.TrimSpace(vals[0]), true
}

func formFile(form *multipart.Form, key string) *multipart.FileHeader {
	files, ok := form.File[key]
	if !ok || len(files) == 0 {
		return nil
	}
	return files[0]
}

func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// parseProductForm maps the wire payload onto the editing aggregate. Malformed
// values become field errors alongside the validation errors collected later;
// attribute slots carry value ids only and are resolved against the catalog by
// the caller.
func parseProductForm(form *multipart.Form, errs products.FieldErrors) *products.ProductForm {
	f := &products.ProductForm{Variants: &products.VariantSet{}}

	f.Name, _ = formValue(form, "name")
	f.Description, _ = formValue(form, "description")
	f.Ingredient, _ = formValue(form, "ingredient")
	f.Instruction, _ = formValue(form, "instruction")

	if raw, ok := formValue(form, "category_id"); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add("category_id", "category id must be a number")
		} else {
			f.CategoryID = id
		}
	}
	if raw, ok := formValue(form, "brand_id"); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add("brand_id", "brand id must be a number")
		} else {
			f.BrandID = id
		}
	}

	f.Image.NewFile = formFile(form, "image")
	f.Image.Existing, _ = formValue(form, "existingImage")

	for i := 0; i < maxFormVariants; i++ {
		prefix := fmt.Sprintf("variants[%d]", i)
		if !variantPresent(form, prefix) {
			break
		}
		f.Variants.Rows = append(f.Variants.Rows, parseVariantRow(form, prefix, errs))
	}

	return f
}

func variantPresent(form *multipart.Form, prefix string) bool {
	probe := []string{".price", ".stock", ".id"}
	for _, suffix := range probe {
		if _, ok := form.Value[prefix+suffix]; ok {
			return true
		}
	}
	if _, ok := form.File[prefix+".image"]; ok {
		return true
	}
	return false
}

func parseVariantRow(form *multipart.Form, prefix string, errs products.FieldErrors) *products.VariantRow {
	row := &products.VariantRow{}

	if raw, ok := formValue(form, prefix+".id"); ok && raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add(prefix+".id", "variant id must be a number")
		} else {
			row.ID = id
		}
	}
	if raw, ok := formValue(form, prefix+".price"); ok {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add(prefix+".price", "price must be a number")
		} else {
			row.Price = price
		}
	}
	if raw, ok := formValue(form, prefix+".stock"); ok {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			errs.Add(prefix+".stock", "stock must be an integer")
		} else {
			row.Stock = stock
		}
	}

	// Attribute slots: value ids in slot order; the owning attribute is
	// resolved later against the catalog.
	for j := 0; ; j++ {
		raw, ok := formValue(form, fmt.Sprintf("%s.attributes[%d]", prefix, j))
		if !ok {
			break
		}
		slot := products.AttributeSlot{}
		if raw != "" {
			valueID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				errs.Add(fmt.Sprintf("%s.attributes[%d]", prefix, j), "attribute value id must be a number")
			} else {
				slot.ValueID = valueID
			}
		}
		row.Slots = append(row.Slots, slot)
	}

	row.Promotion = parsePromotionDraft(form, prefix+".discount", errs)

	row.PrimaryImage.NewFile = formFile(form, prefix+".image")
	row.PrimaryImage.Existing, _ = formValue(form, prefix+".existingImage")

	// Gallery order: surviving existing references first, freshly captured
	// files after, each entry individually tagged.
	for k := 0; ; k++ {
		ref, ok := formValue(form, fmt.Sprintf("%s.existingImages[%d]", prefix, k))
		if !ok {
			break
		}
		if ref != "" {
			row.Gallery = append(row.Gallery, products.ImageRef{Existing: ref})
		}
	}
	for _, fh := range form.File[prefix+".images"] {
		row.Gallery = append(row.Gallery, products.ImageRef{NewFile: fh})
	}

	return row
}

func parsePromotionDraft(form *multipart.Form, prefix string, errs products.FieldErrors) *products.PromotionDraft {
	percentRaw, hasPercent := formValue(form, prefix+".percent")
	priceRaw, hasPrice := formValue(form, prefix+".price")
	startRaw, hasStart := formValue(form, prefix+".start_day")
	endRaw, hasEnd := formValue(form, prefix+".end_day")

	if !hasPercent && !hasPrice && !hasStart && !hasEnd {
		return nil
	}

	draft := &products.PromotionDraft{}
	if hasPercent {
		percent, err := strconv.Atoi(percentRaw)
		if err != nil {
			errs.Add(prefix+".percent", "discount percent must be an integer")
		} else {
			draft.Percent = percent
		}
	} else {
		errs.Add(prefix+".percent", "discount percent is required")
	}
	if hasPrice {
		price, err := strconv.ParseInt(priceRaw, 10, 64)
		if err != nil {
			errs.Add(prefix+".price", "discount price must be a number")
		} else {
			draft.Price = price
		}
	} else {
		errs.Add(prefix+".price", "discount price is required")
	}
	if hasStart {
		start, err := parseDay(startRaw)
		if err != nil {
			errs.Add(prefix+".start_day", "start date must be YYYY-MM-DD or an RFC3339 timestamp")
		} else {
			draft.StartAt = start
		}
	}
	if hasEnd {
		end, err := parseDay(endRaw)
		if err != nil {
			errs.Add(prefix+".end_day", "end date must be YYYY-MM-DD or an RFC3339 timestamp")
		} else {
			draft.EndAt = end
		}
	}
	return draft
}
