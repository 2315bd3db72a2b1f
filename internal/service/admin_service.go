package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/variant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAttributes          = errors.New("variant must carry at least one attribute")
	ErrMissingRequiredAttribute = errors.New("variant is missing required attributes")
	ErrInvalidSlug              = errors.New("slug is empty after normalization")
)

// AdminService defines catalog maintenance operations
type AdminService interface {
	CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	CreateVariant(ctx context.Context, input VariantInput) (*domain.Variant, error)
	UpdateVariant(ctx context.Context, id uuid.UUID, input VariantInput) (*domain.Variant, error)
	DeleteVariant(ctx context.Context, id uuid.UUID) error
}

type CategoryInput struct {
	Name string
	Slug string
}

// ProductInput carries product fields. A nil VariantConfig leaves the stored config untouched on update.
type ProductInput struct {
	Name               string
	Slug               string
	CategoryID         uuid.UUID
	Description        string
	MRP                decimal.Decimal
	SellingPrice       decimal.Decimal
	DiscountPercentage *decimal.Decimal
	VariantConfig      []variant.RawAttribute
	Specifications     map[string]string
}

type VariantInput struct {
	ProductID          uuid.UUID
	Name               *string
	SKU                string
	Barcode            *string
	Attributes         map[string]string
	MRP                decimal.Decimal
	SellingPrice       decimal.Decimal
	DiscountPercentage *decimal.Decimal
	Stock              *int
}

type adminService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	now          func() time.Time
}

// NewAdminService creates a new instance of AdminService
func NewAdminService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
) AdminService {
	return &adminService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *adminService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	slug, err := slugFor(input.Slug, input.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(input.Name),
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *adminService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *adminService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	slug, err := slugFor(input.Slug, input.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	product := &domain.Product{
		ID:        uuid.New(),
		CreatedAt: now,
	}
	applyProductInput(product, input, slug, now)
	product.VariantConfig = variant.Normalize(input.VariantConfig)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct never rewrites existing variant attributes, even when the config drops or renames keys
func (s *adminService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	slug, err := slugFor(input.Slug, input.Name)
	if err != nil {
		return nil, err
	}

	applyProductInput(product, input, slug, s.now())
	if input.VariantConfig != nil {
		product.VariantConfig = variant.Normalize(input.VariantConfig)
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func applyProductInput(p *domain.Product, input ProductInput, slug string, now time.Time) {
	p.Name = strings.TrimSpace(input.Name)
	p.Slug = slug
	p.CategoryID = input.CategoryID
	p.Description = input.Description
	p.MRP = input.MRP
	p.SellingPrice = input.SellingPrice
	p.DiscountPercentage = discountOrDerived(input.DiscountPercentage, input.MRP, input.SellingPrice)
	p.Specifications = domain.Specifications(input.Specifications)
	p.UpdatedAt = now
}

func (s *adminService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.SoftDelete(ctx, id)
}

func (s *adminService) CreateVariant(ctx context.Context, input VariantInput) (*domain.Variant, error) {
	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	attrs, err := cleanAttributes(input.Attributes)
	if err != nil {
		return nil, err
	}
	if missing := missingRequired(product.VariantConfig, attrs); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredAttribute, strings.Join(missing, ", "))
	}

	now := s.now()
	v := &domain.Variant{
		ID:        uuid.New(),
		ProductID: product.ID,
		CreatedAt: now,
	}
	applyVariantInput(v, input, attrs, now)

	if err := s.variantRepo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateVariant replaces attributes wholesale. Required keys are only enforced at creation.
func (s *adminService) UpdateVariant(ctx context.Context, id uuid.UUID, input VariantInput) (*domain.Variant, error) {
	v, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	attrs, err := cleanAttributes(input.Attributes)
	if err != nil {
		return nil, err
	}

	applyVariantInput(v, input, attrs, s.now())

	if err := s.variantRepo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func applyVariantInput(v *domain.Variant, input VariantInput, attrs variant.Attributes, now time.Time) {
	v.Name = input.Name
	v.SKU = strings.TrimSpace(input.SKU)
	v.Barcode = input.Barcode
	v.Attributes = attrs
	v.MRP = input.MRP
	v.SellingPrice = input.SellingPrice
	v.DiscountPercentage = discountOrDerived(input.DiscountPercentage, input.MRP, input.SellingPrice)
	v.Stock = input.Stock
	v.UpdatedAt = now
}

func (s *adminService) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	return s.variantRepo.SoftDelete(ctx, id)
}

// cleanAttributes trims keys and values and drops blank entries
func cleanAttributes(raw map[string]string) (variant.Attributes, error) {
	attrs := make(variant.Attributes, len(raw))
	for k, v := range raw {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		attrs[k] = v
	}
	if len(attrs) == 0 {
		return nil, ErrEmptyAttributes
	}
	return attrs, nil
}

func missingRequired(schema variant.Schema, attrs variant.Attributes) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, key := range schema.RequiredKeys() {
		if _, ok := attrs.Get(key); !ok && !seen[key] {
			missing = append(missing, key)
			seen[key] = true
		}
	}
	sort.Strings(missing)
	return missing
}

func discountOrDerived(explicit *decimal.Decimal, mrp, sellingPrice decimal.Decimal) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	return domain.DiscountFor(mrp, sellingPrice)
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with hyphens
func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func slugFor(explicit, name string) (string, error) {
	source := explicit
	if strings.TrimSpace(source) == "" {
		source = name
	}
	slug := Slugify(source)
	if slug == "" {
		return "", ErrInvalidSlug
	}
	return slug, nil
}
