package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/variant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products in the storefront navigation
type Category struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Slug      string     `json:"slug" db:"slug"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Product is a catalog entry. Its VariantConfig is the attribute schema its variants are described by.
type Product struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Slug               string          `json:"slug" db:"slug"`
	CategoryID         uuid.UUID       `json:"category_id" db:"category_id"`
	Description        string          `json:"description" db:"description"`
	MRP                decimal.Decimal `json:"mrp" db:"mrp"`
	SellingPrice       decimal.Decimal `json:"selling_price" db:"selling_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" db:"discount_percentage"`
	VariantConfig      variant.Schema  `json:"variant_config" db:"variant_config"`
	Specifications     Specifications  `json:"specifications" db:"specifications"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt          *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Variant is one sellable SKU of a product
type Variant struct {
	ID                 uuid.UUID          `json:"id" db:"id"`
	ProductID          uuid.UUID          `json:"product_id" db:"product_id"`
	Name               *string            `json:"name,omitempty" db:"name"`
	SKU                string             `json:"sku" db:"sku"`
	Barcode            *string            `json:"barcode,omitempty" db:"barcode"`
	Attributes         variant.Attributes `json:"attributes" db:"attributes"`
	MRP                decimal.Decimal    `json:"mrp" db:"mrp"`
	SellingPrice       decimal.Decimal    `json:"selling_price" db:"selling_price"`
	DiscountPercentage decimal.Decimal    `json:"discount_percentage" db:"discount_percentage"`
	// Stock is nil when the variant's inventory is not tracked
	Stock     *int       `json:"stock,omitempty" db:"stock"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func (v *Variant) AttributeMap() variant.Attributes { return v.Attributes }
func (v *Variant) StockLevel() *int                 { return v.Stock }

// Specifications is free-form key/value product data shown on the detail page
type Specifications map[string]string

// Value implements driver.Valuer
func (s Specifications) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(s))
}

// Scan implements sql.Scanner
func (s *Specifications) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = Specifications{}
		return nil
	case []byte:
		return json.Unmarshal(v, (*map[string]string)(s))
	case string:
		return json.Unmarshal([]byte(v), (*map[string]string)(s))
	default:
		return fmt.Errorf("unsupported specifications column type %T", src)
	}
}

// DiscountFor derives the discount percentage from MRP and selling price, rounded to two places
func DiscountFor(mrp, sellingPrice decimal.Decimal) decimal.Decimal {
	if !mrp.IsPositive() || sellingPrice.GreaterThanOrEqual(mrp) {
		return decimal.Zero
	}
	return mrp.Sub(sellingPrice).Div(mrp).Mul(decimal.NewFromInt(100)).Round(2)
}
