package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/variant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultShopLimit = 9
	MaxShopLimit     = 60
)

var (
	ErrProductUnavailable = errors.New("product has no purchasable variants")
	ErrUnknownAttribute   = errors.New("attribute is not part of the product configuration")
)

// CatalogService defines the storefront read operations
type CatalogService interface {
	ProductDetail(ctx context.Context, slug string, query url.Values) (*ProductDetail, error)
	ChangeSelection(ctx context.Context, slug string, query url.Values, key, value string) (*variant.Navigation[*domain.Variant], error)
	AttributeFacets(ctx context.Context, categorySlugs []string) ([]variant.Facet, error)
	Shop(ctx context.Context, q ShopQuery) (*ShopResult, error)
	VerifyCart(ctx context.Context, items []CartItem) ([]CartLine, error)
}

// ProductDetail is everything the product page renders
type ProductDetail struct {
	Product            *domain.Product            `json:"product"`
	Variant            *domain.Variant            `json:"variant"`
	Variants           []*domain.Variant          `json:"variants"`
	AttributeOptions   map[string][]string        `json:"attribute_options"`
	SelectedAttributes variant.Selection          `json:"selected_attributes"`
	Options            []variant.AttributeOptions `json:"options"`
	URL                string                     `json:"url"`
}

// ShopQuery is a parsed listing request
type ShopQuery struct {
	Categories []string
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Attributes map[string][]string
	Sort       repository.ProductSort
	Page       int
	Limit      int
}

// ShopProduct is a listed product with the variants that matched the filters
type ShopProduct struct {
	Product  *domain.Product   `json:"product"`
	Variants []*domain.Variant `json:"variants"`
}

type ShopResult struct {
	Products []ShopProduct `json:"products"`
	NextPage *int          `json:"nextPage"`
}

type CartItem struct {
	VariantID uuid.UUID `json:"variantId"`
	Qty       int       `json:"qty"`
}

// CartLine is a cart item confirmed as purchasable at current prices
type CartLine struct {
	ProductID    uuid.UUID          `json:"productId"`
	VariantID    uuid.UUID          `json:"variantId"`
	Name         string             `json:"name"`
	Slug         string             `json:"slug"`
	URL          string             `json:"url"`
	Attributes   variant.Attributes `json:"attributes"`
	MRP          decimal.Decimal    `json:"mrp"`
	SellingPrice decimal.Decimal    `json:"sellingPrice"`
	Qty          int                `json:"qty"`
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	productPath  string
}

// NewCatalogService creates a new instance of CatalogService. productPath prefixes canonical product URLs.
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	productPath string,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		productPath:  productPath,
	}
}

func (s *catalogService) productURL(slug string) string {
	return s.productPath + "/" + url.PathEscape(slug)
}

// loadProduct fetches a live product and its variants, refusing products that cannot be sold
func (s *catalogService) loadProduct(ctx context.Context, slug string) (*domain.Product, []*domain.Variant, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	variants, err := s.variantRepo.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load variants: %w", err)
	}
	if len(variants) == 0 {
		return nil, nil, ErrProductUnavailable
	}

	return product, variants, nil
}

// resolverFor picks the active variant for the query and builds a resolver around the effective selection
func resolverFor(product *domain.Product, variants []*domain.Variant, query url.Values) (*domain.Variant, *variant.Resolver[*domain.Variant]) {
	schema := product.VariantConfig
	active, _ := variant.ResolveActive(variants, variant.SelectionFromQuery(schema, query))
	selection := variant.DeriveSelection(schema, active.Attributes, query)
	return active, variant.NewResolver(schema, variants, selection)
}

func (s *catalogService) ProductDetail(ctx context.Context, slug string, query url.Values) (*ProductDetail, error) {
	product, variants, err := s.loadProduct(ctx, slug)
	if err != nil {
		return nil, err
	}

	active, resolver := resolverFor(product, variants, query)

	return &ProductDetail{
		Product:            product,
		Variant:            active,
		Variants:           variants,
		AttributeOptions:   variant.BuildOptionSets(variants, product.VariantConfig),
		SelectedAttributes: resolver.Selection(),
		Options:            resolver.OptionStates(),
		URL:                variant.BuildURL(s.productURL(product.Slug), active.Attributes, product.VariantConfig),
	}, nil
}

func (s *catalogService) ChangeSelection(ctx context.Context, slug string, query url.Values, key, value string) (*variant.Navigation[*domain.Variant], error) {
	product, variants, err := s.loadProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	if _, ok := product.VariantConfig.Lookup(key); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAttribute, key)
	}

	_, resolver := resolverFor(product, variants, query)
	nav := resolver.Navigate(s.productURL(product.Slug), key, value)
	return &nav, nil
}

// AttributeFacets unions attribute values over live variants, optionally scoped to categories
func (s *catalogService) AttributeFacets(ctx context.Context, categorySlugs []string) ([]variant.Facet, error) {
	filter := repository.ProductFilter{}
	if len(categorySlugs) > 0 {
		ids, err := s.categoryIDs(ctx, categorySlugs)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []variant.Facet{}, nil
		}
		filter.CategoryIDs = ids
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	byProduct, err := s.variantsByProduct(ctx, products)
	if err != nil {
		return nil, err
	}

	sources := make([]variant.FacetSource[*domain.Variant], 0, len(products))
	for _, p := range products {
		sources = append(sources, variant.FacetSource[*domain.Variant]{
			Schema:   p.VariantConfig,
			Variants: byProduct[p.ID],
		})
	}

	return variant.AggregateFacets(sources), nil
}

// Shop lists products a page at a time. Pagination applies to products before variant filtering,
// so a page may hold fewer than Limit entries while NextPage is still set.
func (s *catalogService) Shop(ctx context.Context, q ShopQuery) (*ShopResult, error) {
	q = normalizeShopQuery(q)
	result := &ShopResult{Products: []ShopProduct{}}

	filter := repository.ProductFilter{
		Search: q.Search,
		Sort:   q.Sort,
		Limit:  q.Limit + 1,
		Offset: q.Page * q.Limit,
	}
	if len(q.Categories) > 0 {
		ids, err := s.categoryIDs(ctx, q.Categories)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return result, nil
		}
		filter.CategoryIDs = ids
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(products) > q.Limit {
		next := q.Page + 1
		result.NextPage = &next
		products = products[:q.Limit]
	}

	byProduct, err := s.variantsByProduct(ctx, products)
	if err != nil {
		return nil, err
	}

	for _, p := range products {
		var matched []*domain.Variant
		for _, v := range byProduct[p.ID] {
			if q.priceMatches(v.SellingPrice) && variant.MatchesAny(v.Attributes, q.Attributes) {
				matched = append(matched, v)
			}
		}
		if len(matched) > 0 {
			result.Products = append(result.Products, ShopProduct{Product: p, Variants: matched})
		}
	}

	return result, nil
}

func normalizeShopQuery(q ShopQuery) ShopQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultShopLimit
	}
	if q.Limit > MaxShopLimit {
		q.Limit = MaxShopLimit
	}
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Sort == "" {
		q.Sort = repository.SortNewest
	}
	return q
}

func (q ShopQuery) priceMatches(price decimal.Decimal) bool {
	if q.MinPrice != nil && price.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && price.GreaterThan(*q.MaxPrice) {
		return false
	}
	return true
}

// VerifyCart drops lines whose variant is gone, deleted or out of stock and refreshes prices on the rest
func (s *catalogService) VerifyCart(ctx context.Context, items []CartItem) ([]CartLine, error) {
	lines := make([]CartLine, 0, len(items))
	products := make(map[uuid.UUID]*domain.Product)

	for _, item := range items {
		v, err := s.variantRepo.FindByID(ctx, item.VariantID)
		if errors.Is(err, repository.ErrVariantNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !variant.Orderable(v) {
			continue
		}

		product, ok := products[v.ProductID]
		if !ok {
			product, err = s.productRepo.FindByID(ctx, v.ProductID)
			if errors.Is(err, repository.ErrProductNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			products[v.ProductID] = product
		}

		lines = append(lines, CartLine{
			ProductID:    product.ID,
			VariantID:    v.ID,
			Name:         product.Name,
			Slug:         product.Slug,
			URL:          variant.BuildURL(s.productURL(product.Slug), v.Attributes, product.VariantConfig),
			Attributes:   v.Attributes.Clone(),
			MRP:          v.MRP,
			SellingPrice: v.SellingPrice,
			Qty:          item.Qty,
		})
	}

	return lines, nil
}

func (s *catalogService) categoryIDs(ctx context.Context, slugs []string) ([]uuid.UUID, error) {
	categories, err := s.categoryRepo.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids, nil
}

func (s *catalogService) variantsByProduct(ctx context.Context, products []*domain.Product) (map[uuid.UUID][]*domain.Variant, error) {
	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	variants, err := s.variantRepo.ListByProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}

	grouped := make(map[uuid.UUID][]*domain.Variant, len(products))
	for _, v := range variants {
		grouped[v.ProductID] = append(grouped[v.ProductID], v)
	}
	return grouped, nil
}
