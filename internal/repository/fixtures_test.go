package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/variant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func createCategory(t *testing.T, name string) *domain.Category {
	t.Helper()
	now := time.Now().UTC()
	c := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      "cat-" + uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, NewCategoryRepository(testDB).Create(context.Background(), c))
	return c
}

func newProduct(categoryID uuid.UUID, name string, price int64) *domain.Product {
	now := time.Now().UTC()
	return &domain.Product{
		ID:                 uuid.New(),
		Name:               name,
		Slug:               "prod-" + uuid.NewString(),
		CategoryID:         categoryID,
		Description:        "ISO 15552 cylinder",
		MRP:                decimal.NewFromInt(price + 100),
		SellingPrice:       decimal.NewFromInt(price),
		DiscountPercentage: domain.DiscountFor(decimal.NewFromInt(price+100), decimal.NewFromInt(price)),
		VariantConfig: variant.Schema{
			{Key: "diameter", Label: "Bore Diameter", Unit: "mm", Required: true, ValueType: variant.ValueTypeSelect, Options: []string{"32", "40"}},
		},
		Specifications: domain.Specifications{"standard": "ISO 15552"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func createProduct(t *testing.T, categoryID uuid.UUID, name string, price int64) *domain.Product {
	t.Helper()
	p := newProduct(categoryID, name, price)
	require.NoError(t, NewProductRepository(testDB).Create(context.Background(), p))
	return p
}

func newVariant(productID uuid.UUID, attrs variant.Attributes, stock *int, createdAt time.Time) *domain.Variant {
	return &domain.Variant{
		ID:                 uuid.New(),
		ProductID:          productID,
		SKU:                "SKU-" + uuid.NewString(),
		Attributes:         attrs,
		MRP:                decimal.NewFromInt(1200),
		SellingPrice:       decimal.NewFromInt(1000),
		DiscountPercentage: decimal.RequireFromString("16.67"),
		Stock:              stock,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}
}

func intPtr(n int) *int { return &n }
