package products

import (
	"errors"
	"math"
	"time"
)

var (
	ErrPercentOutOfRange    = errors.New("discount percent must be between 0 and 100")
	ErrPriceOutOfRange      = errors.New("discount price must be at least 1 and below the variant price")
	ErrPromotionNotEditable = errors.New("promotion is already active and cannot be edited")
)

// PromotionState classifies a variant's promotion for the editing workflow.
type PromotionState string

const (
	NoPromotion      PromotionState = "none"
	PendingPromotion PromotionState = "pending" // window not yet open, editable
	ActivePromotion  PromotionState = "active"  // window open, read-only
	ExpiredPromotion PromotionState = "expired"
)

// Promotion is a persisted promotional discount on one variant.
type Promotion struct {
	ID        int64     `json:"id"`
	VariantID int64     `json:"variant_id"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Percent   int       `json:"percent"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StateAt classifies the promotion window relative to now.
func (p *Promotion) StateAt(now time.Time) PromotionState {
	switch {
	case p == nil:
		return NoPromotion
	case now.Before(p.StartAt):
		return PendingPromotion
	case now.Before(p.EndAt):
		return ActivePromotion
	default:
		return ExpiredPromotion
	}
}

// PromotionView is the hydration shape: the record plus its computed state,
// so clients never re-derive editability from raw fields.
type PromotionView struct {
	Promotion
	State PromotionState `json:"state"`
}

// PromotionDraft is the editable promotion of one variant row before
// submission. Percent and price are kept mutually consistent: editing either
// recomputes the other from the variant price, and the most recently edited
// field is authoritative.
type PromotionDraft struct {
	StartAt time.Time
	EndAt   time.Time
	Percent int
	Price   int64
}

func discountPriceFor(variantPrice int64, percent int) int64 {
	return int64(math.Round(float64(variantPrice) * (1 - float64(percent)/100)))
}

func discountPercentFor(variantPrice, discountPrice int64) int {
	return int(math.Round(float64(variantPrice-discountPrice) / float64(variantPrice) * 100))
}

// SetPercent updates the percent and recomputes the price. The draft is left
// untouched when the result would fall outside the allowed price band.
func (d *PromotionDraft) SetPercent(variantPrice int64, percent int) error {
	if percent < 0 || percent > 100 {
		return ErrPercentOutOfRange
	}
	price := discountPriceFor(variantPrice, percent)
	if price < 1 || price >= variantPrice {
		return ErrPriceOutOfRange
	}
	d.Percent = percent
	d.Price = price
	return nil
}

// SetPrice updates the price and recomputes the percent.
func (d *PromotionDraft) SetPrice(variantPrice, price int64) error {
	if variantPrice <= 0 || price < 1 || price >= variantPrice {
		return ErrPriceOutOfRange
	}
	d.Price = price
	d.Percent = discountPercentFor(variantPrice, price)
	return nil
}

// RecomputeForPrice re-derives the discount price after the variant price
// changed, keeping the percent as the driving field so the pair never
// silently diverges from the new price.
func (d *PromotionDraft) RecomputeForPrice(variantPrice int64) {
	d.Price = discountPriceFor(variantPrice, d.Percent)
}

// Validate checks the four fields of a complete draft against the variant
// price, collecting one message per offending field.
func (d *PromotionDraft) Validate(variantPrice int64) map[string]string {
	errs := make(map[string]string)
	if d.StartAt.IsZero() {
		errs["start_day"] = "start date is required"
	}
	if d.EndAt.IsZero() {
		errs["end_day"] = "end date is required"
	}
	if !d.StartAt.IsZero() && !d.EndAt.IsZero() && !d.EndAt.After(d.StartAt) {
		errs["end_day"] = "end date must be after start date"
	}
	if d.Percent < 0 || d.Percent > 100 {
		errs["percent"] = ErrPercentOutOfRange.Error()
	}
	if d.Price < 1 || d.Price >= variantPrice {
		errs["price"] = ErrPriceOutOfRange.Error()
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
