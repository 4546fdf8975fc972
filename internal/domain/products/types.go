package products

import "time"

type Brand struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Ingredient  string    `json:"ingredient"`
	Instruction string    `json:"instruction"`
	ImageURL    string    `json:"image_url"`
	CategoryID  int64     `json:"category_id"`
	BrandID     int64     `json:"brand_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SellState is the variant lifecycle state. Transitions happen only through
// the stop/continue endpoints, never through the product form.
type SellState string

const (
	Selling SellState = "selling"
	Stopped SellState = "stopped"
)

// CanTransitionTo reports whether s may move to next. The machine is a simple
// two-state toggle; repeating the current state is not a valid transition.
func (s SellState) CanTransitionTo(next SellState) bool {
	switch {
	case s == Selling && next == Stopped:
		return true
	case s == Stopped && next == Selling:
		return true
	default:
		return false
	}
}

// Variant is a persisted product variant (one purchasable SKU).
type Variant struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	SKU         string    `json:"sku"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"image_url"`
	GalleryURLs []string  `json:"gallery_urls"`
	SellState   SellState `json:"sell_state"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VariantAttribute is one resolved attribute choice of a persisted variant.
// Position mirrors the slot order shared by every variant of the product.
type VariantAttribute struct {
	AttributeID   int64  `json:"attribute_id"`
	AttributeName string `json:"attribute_name"`
	ValueID       int64  `json:"value_id"`
	ValueName     string `json:"value_name"`
	Position      int    `json:"position"`
}

// AdminVariant is the admin hydration view of a variant: the row itself, its
// attribute choices in slot order, and its promotion state.
type AdminVariant struct {
	Variant
	Attributes []VariantAttribute `json:"attributes"`
	Promotion  *PromotionView     `json:"promotion,omitempty"`
}

// ProductDetail is the admin hydration view of the whole product.
type ProductDetail struct {
	Product  *Product        `json:"product"`
	Brand    *Brand          `json:"brand,omitempty"`
	Category *Category       `json:"category,omitempty"`
	Variants []*AdminVariant `json:"variants"`
}
