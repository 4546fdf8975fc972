package products

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"icommerce/internal/domain/catalog"
)

var (
	ErrLastRow             = errors.New("a product needs at least one variant")
	ErrLastSlot            = errors.New("a variant needs at least one attribute slot")
	ErrRowOutOfRange       = errors.New("variant index out of range")
	ErrSlotOutOfRange      = errors.New("attribute slot index out of range")
	ErrSlotNotFirstRow     = errors.New("only the first variant may choose a slot's attribute")
	ErrAttributeOccupied   = errors.New("attribute already occupies a slot")
	ErrSchemaParity        = errors.New("all variants must share the same attribute list")
	ErrValueNotInAttribute = errors.New("value does not belong to the slot's attribute")
)

// AttributeSlot is one position in the ordered attribute choices of a variant
// row. The attribute occupying a given position is shared by every row; only
// the chosen value differs per row. Zero means unset.
type AttributeSlot struct {
	AttributeID int64
	ValueID     int64
}

// VariantRow is one variant as edited in the product form, before anything is
// uploaded or persisted. ID is zero for rows not yet saved.
type VariantRow struct {
	ID           int64
	Price        int64
	Stock        int
	PrimaryImage ImageRef
	Gallery      []ImageRef
	Slots        []AttributeSlot
	Promotion    *PromotionDraft
}

// VariantSet owns the collection of variant rows and keeps the cross-row
// invariants: every row carries the same ordered attribute list (schema
// parity) and no two rows may repeat the same value combination. All slot
// mutations apply to every row atomically so a validation pass never observes
// rows with diverging slot counts.
type VariantSet struct {
	Rows []*VariantRow
}

// NewVariantSet starts a creation session: one row holding one empty slot.
func NewVariantSet() *VariantSet {
	return &VariantSet{
		Rows: []*VariantRow{{Slots: []AttributeSlot{{}}}},
	}
}

// AddRow appends a new row that inherits the first row's attribute choices
// with empty values, so schema parity holds by construction.
func (s *VariantSet) AddRow() *VariantRow {
	row := &VariantRow{}
	if len(s.Rows) > 0 {
		for _, slot := range s.Rows[0].Slots {
			row.Slots = append(row.Slots, AttributeSlot{AttributeID: slot.AttributeID})
		}
	}
	s.Rows = append(s.Rows, row)
	return row
}

// RemoveRow deletes the row at index; the last remaining row cannot be removed.
func (s *VariantSet) RemoveRow(index int) error {
	if index < 0 || index >= len(s.Rows) {
		return ErrRowOutOfRange
	}
	if len(s.Rows) <= 1 {
		return ErrLastRow
	}
	s.Rows = append(s.Rows[:index], s.Rows[index+1:]...)
	return nil
}

// AddSlot appends an empty slot for the given attribute to every row. The
// attribute must not already occupy a slot (checked against the first row,
// which defines the schema).
func (s *VariantSet) AddSlot(attributeID int64) error {
	if len(s.Rows) == 0 {
		return ErrRowOutOfRange
	}
	for _, slot := range s.Rows[0].Slots {
		if slot.AttributeID != 0 && slot.AttributeID == attributeID {
			return ErrAttributeOccupied
		}
	}
	for _, row := range s.Rows {
		row.Slots = append(row.Slots, AttributeSlot{AttributeID: attributeID})
	}
	return nil
}

// RemoveSlot drops the slot at position from every row. Refused when it would
// leave the rows without any slot.
func (s *VariantSet) RemoveSlot(position int) error {
	if len(s.Rows) == 0 || position < 0 || position >= len(s.Rows[0].Slots) {
		return ErrSlotOutOfRange
	}
	if len(s.Rows[0].Slots) <= 1 {
		return ErrLastSlot
	}
	for _, row := range s.Rows {
		row.Slots = append(row.Slots[:position], row.Slots[position+1:]...)
	}
	return nil
}

// SetSlotDefinition changes which attribute occupies a slot. Only the first
// row may do this; the new attribute propagates to every row and every row's
// value at that slot is cleared, since a value chosen for the old attribute is
// meaningless under the new one.
func (s *VariantSet) SetSlotDefinition(rowIndex, slotIndex int, attributeID int64) error {
	if rowIndex != 0 {
		return ErrSlotNotFirstRow
	}
	if len(s.Rows) == 0 {
		return ErrRowOutOfRange
	}
	if slotIndex < 0 || slotIndex >= len(s.Rows[0].Slots) {
		return ErrSlotOutOfRange
	}
	for i, slot := range s.Rows[0].Slots {
		if i != slotIndex && slot.AttributeID != 0 && slot.AttributeID == attributeID {
			return ErrAttributeOccupied
		}
	}
	for _, row := range s.Rows {
		row.Slots[slotIndex] = AttributeSlot{AttributeID: attributeID}
	}
	return nil
}

// SetSlotValue picks a value for one row's slot. Other rows are untouched.
// When the owning attribute is supplied, membership of the value is enforced.
func (s *VariantSet) SetSlotValue(rowIndex, slotIndex int, valueID int64, attr *catalog.Attribute) error {
	if rowIndex < 0 || rowIndex >= len(s.Rows) {
		return ErrRowOutOfRange
	}
	row := s.Rows[rowIndex]
	if slotIndex < 0 || slotIndex >= len(row.Slots) {
		return ErrSlotOutOfRange
	}
	if attr != nil {
		if attr.ID != row.Slots[slotIndex].AttributeID {
			return ErrValueNotInAttribute
		}
		found := false
		for _, v := range attr.Values {
			if v.ID == valueID {
				found = true
				break
			}
		}
		if !found {
			return ErrValueNotInAttribute
		}
	}
	row.Slots[slotIndex].ValueID = valueID
	return nil
}

// ValidateSchemaParity compares every row's ordered attribute sequence against
// the first row's. Only meaningful with two or more rows.
func (s *VariantSet) ValidateSchemaParity() error {
	if len(s.Rows) < 2 {
		return nil
	}
	reference := s.Rows[0].attributeSequence()
	for _, row := range s.Rows[1:] {
		seq := row.attributeSequence()
		if len(seq) != len(reference) {
			return ErrSchemaParity
		}
		for i := range seq {
			if seq[i] != reference[i] {
				return ErrSchemaParity
			}
		}
	}
	return nil
}

func (row *VariantRow) attributeSequence() []int64 {
	seq := make([]int64, 0, len(row.Slots))
	for _, slot := range row.Slots {
		if slot.AttributeID != 0 {
			seq = append(seq, slot.AttributeID)
		}
	}
	return seq
}

// combinationKey joins the row's ordered value choices; unset values
// contribute an empty segment so partially filled rows still compare by
// position.
func (row *VariantRow) combinationKey() string {
	parts := make([]string, len(row.Slots))
	for i, slot := range row.Slots {
		if slot.ValueID != 0 {
			parts[i] = strconv.FormatInt(slot.ValueID, 10)
		}
	}
	return strings.Join(parts, "|")
}

// ValidateUniqueCombinations flags every pair of rows that resolve to the same
// ordered value tuple. The result maps each offending row index to the index
// of its conflicting counterpart; both sides of a pair are reported. Only
// meaningful with two or more rows.
func (s *VariantSet) ValidateUniqueCombinations() map[int]int {
	if len(s.Rows) < 2 {
		return nil
	}
	conflicts := make(map[int]int)
	seen := make(map[string]int, len(s.Rows))
	for i, row := range s.Rows {
		key := row.combinationKey()
		if first, ok := seen[key]; ok {
			conflicts[first] = i
			conflicts[i] = first
			continue
		}
		seen[key] = i
	}
	if len(conflicts) == 0 {
		return nil
	}
	return conflicts
}

// AvailableAttributes returns the catalog definitions not yet occupying a slot
// in the given row, i.e. the options for adding a new slot.
func (s *VariantSet) AvailableAttributes(rowIndex int, all []*catalog.Attribute) ([]*catalog.Attribute, error) {
	if rowIndex < 0 || rowIndex >= len(s.Rows) {
		return nil, ErrRowOutOfRange
	}
	used := make(map[int64]bool, len(s.Rows[rowIndex].Slots))
	for _, slot := range s.Rows[rowIndex].Slots {
		if slot.AttributeID != 0 {
			used[slot.AttributeID] = true
		}
	}
	var free []*catalog.Attribute
	for _, attr := range all {
		if !used[attr.ID] {
			free = append(free, attr)
		}
	}
	return free, nil
}

// conflictError renders a uniqueness conflict for one row.
func conflictError(counterpart int) string {
	return fmt.Sprintf("duplicate attribute combination with variant %d", counterpart)
}
