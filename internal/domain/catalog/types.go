package catalog

import "time"

type Attribute struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Values    []AttributeValue `json:"values"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type AttributeValue struct {
	ID          int64     `json:"id"`
	AttributeID int64     `json:"attribute_id"`
	Name        string    `json:"name"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}
