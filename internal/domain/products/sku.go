package products

import (
	"fmt"
	"strings"

	"github.com/speps/go-hashids/v2"
)

// SKUMinter derives short, human-shareable SKU codes from variant ids so the
// raw database sequence never leaks into packing slips.
type SKUMinter struct {
	h *hashids.HashID
}

func NewSKUMinter(salt string) (*SKUMinter, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 6
	data.Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("init sku minter: %w", err)
	}
	return &SKUMinter{h: h}, nil
}

// SKU encodes a variant id as e.g. "IC-7TXK2M".
func (m *SKUMinter) SKU(variantID int64) (string, error) {
	code, err := m.h.EncodeInt64([]int64{variantID})
	if err != nil {
		return "", fmt.Errorf("encode sku: %w", err)
	}
	return "IC-" + strings.ToUpper(code), nil
}
