package models

// LineKey identifies a cart line. An empty VariantID means the line has no variant.
type LineKey struct {
	ProductID string
	VariantID string
}

type CartLine struct {
	Product  Product  `json:"product"`
	Variant  *Variant `json:"variant,omitempty"`
	Quantity int      `json:"quantity"`
}

func (l CartLine) Key() LineKey {
	key := LineKey{ProductID: l.Product.ID}
	if l.Variant != nil {
		key.VariantID = l.Variant.ID
	}

	return key
}

// UnitPrice is the variant price when the line has a variant, else the product price.
func (l CartLine) UnitPrice() float64 {
	if l.Variant != nil {
		return l.Variant.Price
	}

	return l.Product.Price
}

func (l CartLine) LineTotal() float64 {
	return l.UnitPrice() * float64(l.Quantity)
}

type CartView struct {
	Items     []CartLine `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"itemCount"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type RemoveItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id,omitempty"`
}
