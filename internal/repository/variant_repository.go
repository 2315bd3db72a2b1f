package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const variantColumns = `id, product_id, name, sku, barcode, attributes, mrp, selling_price, discount_percentage,
	stock, created_at, updated_at, deleted_at`

// variantOrder keeps resolver tie-breaks stable across requests
const variantOrder = ` ORDER BY created_at ASC, id ASC`

// VariantRepository defines the interface for product variant data access
type VariantRepository interface {
	Create(ctx context.Context, v *domain.Variant) error
	Update(ctx context.Context, v *domain.Variant) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Variant, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Variant, error)
	ListByProducts(ctx context.Context, productIDs []uuid.UUID) ([]*domain.Variant, error)
}

type variantRepository struct {
	db *sqlx.DB
}

// NewVariantRepository creates a new instance of VariantRepository
func NewVariantRepository(db *sqlx.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) Create(ctx context.Context, v *domain.Variant) error {
	query := `
		INSERT INTO product_variants (id, product_id, name, sku, barcode, attributes, mrp, selling_price,
			discount_percentage, stock, created_at, updated_at)
		VALUES (:id, :product_id, :name, :sku, :barcode, :attributes, :mrp, :selling_price,
			:discount_percentage, :stock, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, v); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to create variant: %w", err)
	}

	return nil
}

// Update replaces the variant's mutable fields, attributes included
func (r *variantRepository) Update(ctx context.Context, v *domain.Variant) error {
	query := `
		UPDATE product_variants
		SET name = :name, sku = :sku, barcode = :barcode, attributes = :attributes, mrp = :mrp,
		    selling_price = :selling_price, discount_percentage = :discount_percentage, stock = :stock,
		    updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`

	result, err := r.db.NamedExecContext(ctx, query, v)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to update variant: %w", err)
	}

	return expectRow(result, ErrVariantNotFound)
}

func (r *variantRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE product_variants SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
	}

	return expectRow(result, ErrVariantNotFound)
}

func (r *variantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Variant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1 AND deleted_at IS NULL`

	v := &domain.Variant{}
	if err := r.db.GetContext(ctx, v, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to find variant by ID: %w", err)
	}

	return v, nil
}

func (r *variantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Variant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE product_id = $1 AND deleted_at IS NULL` + variantOrder

	variants := []*domain.Variant{}
	if err := r.db.SelectContext(ctx, &variants, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}

	return variants, nil
}

func (r *variantRepository) ListByProducts(ctx context.Context, productIDs []uuid.UUID) ([]*domain.Variant, error) {
	variants := []*domain.Variant{}
	if len(productIDs) == 0 {
		return variants, nil
	}

	query, args, err := sqlx.In(`SELECT `+variantColumns+` FROM product_variants WHERE deleted_at IS NULL AND product_id IN (?)`+variantOrder, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build variant query: %w", err)
	}

	if err := r.db.SelectContext(ctx, &variants, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}

	return variants, nil
}
