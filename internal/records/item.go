package records

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRecord indicates a candidate record failed sales schema validation.
var ErrInvalidRecord = errors.New("invalid sales record")

// Item is a validated sales record. TotalPrice is populated by the report
// builder, not during validation.
type Item struct {
	ProductID   string  `json:"product_id" validate:"required"`
	ProductName string  `json:"product_name" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	Price       float64 `json:"price" validate:"gt=0"`
	TotalPrice  float64 `json:"total_price"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Item converts the candidate into a validated Item. A candidate is valid
// iff both text fields are present and quantity and price are positive.
// No coercion happens here; Parse already normalized the fields.
func (c Candidate) Item() (Item, error) {
	item := Item{
		ProductID:   c.ProductID,
		ProductName: c.ProductName,
		Quantity:    c.Quantity,
		Price:       c.Price,
	}

	if err := validate.Struct(item); err != nil {
		return Item{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	return item, nil
}

// Validated converts candidates into Items, silently dropping any that fail
// validation. Relative order is preserved.
func Validated(candidates []Candidate) []Item {
	items := make([]Item, 0, len(candidates))
	for _, c := range candidates {
		item, err := c.Item()
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}
