package service

import (
	"context"
	"sort"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing. Slices keep insertion order, which stands in for created_at.

type mockCategoryRepository struct {
	categories []*domain.Category
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	for _, existing := range m.categories {
		if existing.Slug == c.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	m.categories = append(m.categories, c)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	out := append([]*domain.Category{}, m.categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) FindBySlugs(ctx context.Context, slugs []string) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range m.categories {
		for _, s := range slugs {
			if c.Slug == s {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

type mockProductRepository struct {
	products []*domain.Product
	lastList repository.ProductFilter
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	for _, existing := range m.products {
		if existing.Slug == p.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	m.products = append(m.products, p)
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	for i, existing := range m.products {
		if existing.ID == p.ID && existing.DeletedAt == nil {
			m.products[i] = p
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockProductRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	for _, p := range m.products {
		if p.ID == id && p.DeletedAt == nil {
			now := p.UpdatedAt
			p.DeletedAt = &now
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id && p.DeletedAt == nil {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.Slug == slug && p.DeletedAt == nil {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, f repository.ProductFilter) ([]*domain.Product, error) {
	m.lastList = f

	var out []*domain.Product
	for _, p := range m.products {
		if p.DeletedAt != nil {
			continue
		}
		if len(f.CategoryIDs) > 0 && !containsID(f.CategoryIDs, p.CategoryID) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case repository.SortNameAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case repository.SortPriceLowHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].SellingPrice.LessThan(out[j].SellingPrice) })
	}

	if f.Limit > 0 {
		if f.Offset >= len(out) {
			return []*domain.Product{}, nil
		}
		out = out[f.Offset:]
		if len(out) > f.Limit {
			out = out[:f.Limit]
		}
	}
	return out, nil
}

type mockVariantRepository struct {
	variants []*domain.Variant
}

func (m *mockVariantRepository) Create(ctx context.Context, v *domain.Variant) error {
	for _, existing := range m.variants {
		if existing.SKU == v.SKU {
			return repository.ErrDuplicateSKU
		}
	}
	m.variants = append(m.variants, v)
	return nil
}

func (m *mockVariantRepository) Update(ctx context.Context, v *domain.Variant) error {
	for i, existing := range m.variants {
		if existing.ID == v.ID && existing.DeletedAt == nil {
			m.variants[i] = v
			return nil
		}
	}
	return repository.ErrVariantNotFound
}

func (m *mockVariantRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	for _, v := range m.variants {
		if v.ID == id && v.DeletedAt == nil {
			now := v.UpdatedAt
			v.DeletedAt = &now
			return nil
		}
	}
	return repository.ErrVariantNotFound
}

func (m *mockVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Variant, error) {
	for _, v := range m.variants {
		if v.ID == id && v.DeletedAt == nil {
			return v, nil
		}
	}
	return nil, repository.ErrVariantNotFound
}

func (m *mockVariantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Variant, error) {
	return m.ListByProducts(ctx, []uuid.UUID{productID})
}

func (m *mockVariantRepository) ListByProducts(ctx context.Context, ids []uuid.UUID) ([]*domain.Variant, error) {
	out := []*domain.Variant{}
	for _, v := range m.variants {
		if v.DeletedAt == nil && containsID(ids, v.ProductID) {
			out = append(out, v)
		}
	}
	return out, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
