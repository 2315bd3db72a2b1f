package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const productColumns = `id, name, slug, category_id, description, mrp, selling_price, discount_percentage,
	variant_config, specifications, created_at, updated_at, deleted_at`

// ProductSort names a whitelisted listing order
type ProductSort string

const (
	SortNewest       ProductSort = "default_sorting"
	SortNameAsc      ProductSort = "asc"
	SortNameDesc     ProductSort = "desc"
	SortPriceLowHigh ProductSort = "price_low_high"
	SortPriceHighLow ProductSort = "price_high_low"
)

var productOrderBy = map[ProductSort]string{
	SortNewest:       "created_at DESC, id ASC",
	SortNameAsc:      "name ASC, id ASC",
	SortNameDesc:     "name DESC, id ASC",
	SortPriceLowHigh: "selling_price ASC, id ASC",
	SortPriceHighLow: "selling_price DESC, id ASC",
}

// ProductFilter narrows a product listing. A zero Limit returns every match.
type ProductFilter struct {
	CategoryIDs []uuid.UUID
	Search      string
	Sort        ProductSort
	Limit       int
	Offset      int
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
}

type productRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, slug, category_id, description, mrp, selling_price,
			discount_percentage, variant_config, specifications, created_at, updated_at)
		VALUES (:id, :name, :slug, :category_id, :description, :mrp, :selling_price,
			:discount_percentage, :variant_config, :specifications, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, product); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = :name, slug = :slug, category_id = :category_id, description = :description,
		    mrp = :mrp, selling_price = :selling_price, discount_percentage = :discount_percentage,
		    variant_config = :variant_config, specifications = :specifications, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL
	`

	result, err := r.db.NamedExecContext(ctx, query, product)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return expectRow(result, ErrProductNotFound)
}

// SoftDelete marks the product and its variants deleted in one transaction
func (r *productRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE products SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if err := expectRow(result, ErrProductNotFound); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE product_variants SET deleted_at = NOW() WHERE product_id = $1 AND deleted_at IS NULL`, id); err != nil {
		return fmt.Errorf("failed to delete product variants: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product delete: %w", err)
	}

	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.findOne(ctx, `id = $1`, id)
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, `slug = $1`, slug)
}

func (r *productRepository) findOne(ctx context.Context, where string, arg interface{}) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE ` + where + ` AND deleted_at IS NULL`

	product := &domain.Product{}
	if err := r.db.GetContext(ctx, product, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := []interface{}{}

	if len(filter.CategoryIDs) > 0 {
		conditions = append(conditions, "category_id IN (?)")
		args = append(args, filter.CategoryIDs)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, "name ILIKE ?")
		args = append(args, "%"+search+"%")
	}

	orderBy, ok := productOrderBy[filter.Sort]
	if !ok {
		orderBy = productOrderBy[SortNewest]
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY %s`,
		productColumns, strings.Join(conditions, " AND "), orderBy)

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build product query: %w", err)
	}

	products := []*domain.Product{}
	if err := r.db.SelectContext(ctx, &products, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

func expectRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
