package products

import (
	"fmt"
	"strings"
)

// FieldErrors collects validation failures keyed by field path, e.g. "name"
// or "variants[1].discount.percent". The whole form is validated in one pass
// so the operator sees every problem at once.
type FieldErrors map[string]string

// Add records a message for a field, keeping the first one reported.
func (e FieldErrors) Add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

func (e FieldErrors) Any() bool { return len(e) > 0 }

// emptyRichText is the canonical markup a rich-text editor emits for an empty
// document; it counts as an empty field.
var emptyRichText = map[string]bool{
	"":              true,
	"<p><br></p>":   true,
	"<p></p>":       true,
	"<p>&nbsp;</p>": true,
}

func richTextEmpty(s string) bool {
	return emptyRichText[strings.TrimSpace(s)]
}

// ProductForm is the full editing aggregate: the product-level fields plus the
// variant set. ID is zero on create.
type ProductForm struct {
	ID          int64
	Name        string
	Description string
	Ingredient  string
	Instruction string
	CategoryID  int64
	BrandID     int64
	Image       ImageRef
	Variants    *VariantSet
}

// NewProductForm starts a creation session with a single empty variant row.
func NewProductForm() *ProductForm {
	return &ProductForm{Variants: NewVariantSet()}
}

// Validate runs the whole submission check: product fields, per-variant
// fields, then the cross-row structural checks. Every check runs even when an
// earlier one failed; nothing may be persisted while the result is non-empty.
func (f *ProductForm) Validate() FieldErrors {
	errs := make(FieldErrors)

	if strings.TrimSpace(f.Name) == "" {
		errs.Add("name", "product name is required")
	}
	if f.CategoryID <= 0 {
		errs.Add("category_id", "category is required")
	}
	if f.BrandID <= 0 {
		errs.Add("brand_id", "brand is required")
	}
	if richTextEmpty(f.Description) {
		errs.Add("description", "description is required")
	}
	if richTextEmpty(f.Ingredient) {
		errs.Add("ingredient", "ingredient is required")
	}
	if richTextEmpty(f.Instruction) {
		errs.Add("instruction", "usage instruction is required")
	}
	if !f.Image.Resolved() {
		errs.Add("image", "product image is required")
	}

	if f.Variants == nil || len(f.Variants.Rows) == 0 {
		errs.Add("variants", "at least one variant is required")
		return errs
	}

	for i, row := range f.Variants.Rows {
		prefix := fmt.Sprintf("variants[%d]", i)
		if row.Price <= 0 {
			errs.Add(prefix+".price", "price must be greater than zero")
		}
		if row.Stock < 0 {
			errs.Add(prefix+".stock", "stock must not be negative")
		}
		if !row.PrimaryImage.Resolved() {
			errs.Add(prefix+".image", "variant image is required")
		}
		galleryOK := false
		for _, g := range row.Gallery {
			if g.Resolved() {
				galleryOK = true
				break
			}
		}
		if !galleryOK {
			errs.Add(prefix+".images", "at least one gallery image is required")
		}
		if row.Promotion != nil {
			for field, msg := range row.Promotion.Validate(row.Price) {
				errs.Add(prefix+".discount."+field, msg)
			}
		}
	}

	// Cross-row checks always run so the full error set surfaces in one pass.
	if err := f.Variants.ValidateSchemaParity(); err != nil {
		errs.Add("variants", err.Error())
	}
	for i, counterpart := range f.Variants.ValidateUniqueCombinations() {
		errs.Add(fmt.Sprintf("variants[%d]", i), conflictError(counterpart))
		errs.Add("variants", "variants must have distinct attribute combinations")
	}

	return errs
}
