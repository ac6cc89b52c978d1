package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon,omitempty" yaml:"icon"`
}

type Variant struct {
	ID          string  `json:"id" yaml:"id"`
	Barcode     string  `json:"barcode" yaml:"barcode"`
	WeightValue float64 `json:"weightValue" yaml:"weightValue"`
	WeightUnit  string  `json:"weightUnit" yaml:"weightUnit"`
	Price       float64 `json:"price" yaml:"price"`
	MRP         float64 `json:"mrp" yaml:"mrp"`
	Stock       int     `json:"stock" yaml:"stock"`
	Rating      float64 `json:"rating" yaml:"rating"`
}

type Product struct {
	ID                 string    `json:"id" yaml:"id"`
	Name               string    `json:"name" yaml:"name"`
	Description        string    `json:"description" yaml:"description"`
	Brand              string    `json:"brand,omitempty" yaml:"brand"`
	Category           string    `json:"category" yaml:"category"`
	ImageURL           string    `json:"imageUrl" yaml:"imageUrl"`
	Images             []string  `json:"images,omitempty" yaml:"images"`
	Unit               string    `json:"unit,omitempty" yaml:"unit"`
	Quantity           Quantity  `json:"quantity,omitempty" yaml:"quantity"`
	MerchantID         string    `json:"merchantId,omitempty" yaml:"merchantId"`
	Price              float64   `json:"price" yaml:"price"`
	OriginalPrice      float64   `json:"originalPrice,omitempty" yaml:"originalPrice"`
	DiscountPercentage float64   `json:"discountPercentage,omitempty" yaml:"discountPercentage"`
	Variants           []Variant `json:"variants,omitempty" yaml:"variants"`
}

// FindVariant returns the variant with the given id, or nil.
func (p *Product) FindVariant(id string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}

	return nil
}

// Quantity is a pack size that upstream data carries either as a number or as a
// numeric string such as "500" or "2.5 kg".
type Quantity float64

const DefaultQuantity Quantity = 1

func (q Quantity) Float64() float64 {
	return float64(q)
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case float64:
		*q = Quantity(v).orDefault()
	case string:
		*q = ParseQuantity(v)
	default:
		*q = DefaultQuantity
	}

	return nil
}

func (q *Quantity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		*q = DefaultQuantity
		return nil
	}

	*q = ParseQuantity(node.Value)

	return nil
}

// ParseQuantity reads the leading number of s. A sign is only accepted in
// front. Anything unparseable or negative yields DefaultQuantity.
func ParseQuantity(s string) Quantity {
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return DefaultQuantity
	}

	return Quantity(v).orDefault()
}

func (q Quantity) orDefault() Quantity {
	if q < 0 {
		return DefaultQuantity
	}

	return q
}

type CreateVariantRequest struct {
	ID          string  `json:"id,omitempty" validate:"omitempty,max=64"`
	Barcode     string  `json:"barcode,omitempty" validate:"omitempty,max=64"`
	WeightValue float64 `json:"weightValue" validate:"gt=0"`
	WeightUnit  string  `json:"weightUnit" validate:"required,max=16"`
	Price       float64 `json:"price" validate:"gt=0"`
	MRP         float64 `json:"mrp" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// CreateProductRequest is what a merchant submits to list a product. Without
// variants the product is stocked as a single default variant.
type CreateProductRequest struct {
	Name          string                 `json:"name" validate:"required,min=2,max=120"`
	Description   string                 `json:"description" validate:"max=1000"`
	Brand         string                 `json:"brand,omitempty" validate:"max=80"`
	Category      string                 `json:"category" validate:"required"`
	ImageURL      string                 `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Unit          string                 `json:"unit,omitempty" validate:"max=16"`
	Quantity      Quantity               `json:"quantity,omitempty"`
	Price         float64                `json:"price" validate:"gt=0"`
	OriginalPrice float64                `json:"originalPrice,omitempty" validate:"gte=0"`
	Variants      []CreateVariantRequest `json:"variants,omitempty" validate:"omitempty,max=20,dive"`
}

// UpdateProductRequest changes only the fields that are present.
type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Brand         *string  `json:"brand,omitempty" validate:"omitempty,max=80"`
	Category      *string  `json:"category,omitempty" validate:"omitempty,min=1"`
	ImageURL      *string  `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	OriginalPrice *float64 `json:"originalPrice,omitempty" validate:"omitempty,gte=0"`
}

type UpdateStockRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

type InventorySummary struct {
	Products      int `json:"products"`
	Variants      int `json:"variants"`
	LowStock      int `json:"lowStock"`
	OutOfStock    int `json:"outOfStock"`
	LowStockBelow int `json:"lowStockBelow"`
}

// DiscountPercent is the rounded saving of price against mrp, 0 when there is none.
func DiscountPercent(price, mrp float64) float64 {
	if mrp <= 0 || price >= mrp {
		return 0
	}

	return math.Round((mrp - price) / mrp * 100)
}

// EnsureVariants gives a legacy single-SKU product one default variant built
// from its own price, pack size and unit. Products with variants are returned
// unchanged.
func EnsureVariants(p Product) Product {
	if len(p.Variants) > 0 {
		return p
	}

	id := p.ID
	if id == "" {
		id = "0"
	}

	weight := p.Quantity
	if weight == 0 {
		weight = DefaultQuantity
	}

	unit := p.Unit
	if unit == "" {
		unit = "unit"
	}

	mrp := p.OriginalPrice
	if mrp == 0 {
		mrp = p.Price
	}

	p.Variants = []Variant{{
		ID:          "v-" + id,
		Barcode:     "PROD-" + id,
		Rating:      4.0,
		WeightValue: weight.Float64(),
		WeightUnit:  unit,
		Price:       p.Price,
		MRP:         mrp,
		Stock:       50,
	}}

	return p
}
