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

const categoryColumns = `id, name, slug, created_at, updated_at, deleted_at`

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]*domain.Category, error)
}

type categoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, created_at, updated_at)
		VALUES (:id, :name, :slug, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// List returns live categories ordered by name
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE deleted_at IS NULL ORDER BY name ASC`

	categories := []*domain.Category{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND deleted_at IS NULL`

	category := &domain.Category{}
	if err := r.db.GetContext(ctx, category, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// FindBySlugs returns the live categories among slugs; unknown slugs are skipped
func (r *categoryRepository) FindBySlugs(ctx context.Context, slugs []string) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	if len(slugs) == 0 {
		return categories, nil
	}

	query, args, err := sqlx.In(`SELECT `+categoryColumns+` FROM categories WHERE deleted_at IS NULL AND slug IN (?) ORDER BY name ASC`, slugs)
	if err != nil {
		return nil, fmt.Errorf("failed to build category query: %w", err)
	}

	if err := r.db.SelectContext(ctx, &categories, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to find categories by slug: %w", err)
	}

	return categories, nil
}
