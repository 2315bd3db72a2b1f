package transport

import (
	"context"
	"net/url"

	"storefront/internal/domain"
	"storefront/internal/service"
	"storefront/internal/variant"

	"github.com/google/uuid"
)

type mockCatalogService struct {
	detail    *service.ProductDetail
	nav       *variant.Navigation[*domain.Variant]
	facets    []variant.Facet
	shop      *service.ShopResult
	lines     []service.CartLine
	err       error
	lastQuery url.Values
	lastSlugs []string
	lastShop  service.ShopQuery
	lastItems []service.CartItem
	lastKey   string
	lastValue string
}

func (m *mockCatalogService) ProductDetail(ctx context.Context, slug string, query url.Values) (*service.ProductDetail, error) {
	m.lastQuery = query
	return m.detail, m.err
}

func (m *mockCatalogService) ChangeSelection(ctx context.Context, slug string, query url.Values, key, value string) (*variant.Navigation[*domain.Variant], error) {
	m.lastQuery, m.lastKey, m.lastValue = query, key, value
	return m.nav, m.err
}

func (m *mockCatalogService) AttributeFacets(ctx context.Context, categorySlugs []string) ([]variant.Facet, error) {
	m.lastSlugs = categorySlugs
	return m.facets, m.err
}

func (m *mockCatalogService) Shop(ctx context.Context, q service.ShopQuery) (*service.ShopResult, error) {
	m.lastShop = q
	return m.shop, m.err
}

func (m *mockCatalogService) VerifyCart(ctx context.Context, items []service.CartItem) ([]service.CartLine, error) {
	m.lastItems = items
	return m.lines, m.err
}

type mockAdminService struct {
	err          error
	lastCategory service.CategoryInput
	lastProduct  service.ProductInput
	lastVariant  service.VariantInput
	lastID       uuid.UUID
}

func (m *mockAdminService) CreateCategory(ctx context.Context, input service.CategoryInput) (*domain.Category, error) {
	m.lastCategory = input
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Category{ID: uuid.New(), Name: input.Name, Slug: input.Slug}, nil
}

func (m *mockAdminService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []*domain.Category{{ID: uuid.New(), Name: "Pneumatic Cylinders", Slug: "pneumatic-cylinders"}}, nil
}

func (m *mockAdminService) CreateProduct(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
	m.lastProduct = input
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Product{ID: uuid.New(), Name: input.Name, Slug: input.Slug, CategoryID: input.CategoryID}, nil
}

func (m *mockAdminService) UpdateProduct(ctx context.Context, id uuid.UUID, input service.ProductInput) (*domain.Product, error) {
	m.lastID, m.lastProduct = id, input
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Product{ID: id, Name: input.Name, Slug: input.Slug, CategoryID: input.CategoryID}, nil
}

func (m *mockAdminService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	m.lastID = id
	return m.err
}

func (m *mockAdminService) CreateVariant(ctx context.Context, input service.VariantInput) (*domain.Variant, error) {
	m.lastVariant = input
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Variant{ID: uuid.New(), ProductID: input.ProductID, SKU: input.SKU, Attributes: input.Attributes}, nil
}

func (m *mockAdminService) UpdateVariant(ctx context.Context, id uuid.UUID, input service.VariantInput) (*domain.Variant, error) {
	m.lastID, m.lastVariant = id, input
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Variant{ID: id, SKU: input.SKU, Attributes: input.Attributes}, nil
}

func (m *mockAdminService) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	m.lastID = id
	return m.err
}
