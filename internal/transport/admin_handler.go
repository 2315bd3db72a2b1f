package transport

import (
	"fmt"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/variant"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CategoryRequest represents the category creation payload
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Slug string `json:"slug" validate:"max=255"`
}

// AttributeRequest is one entry of a product's variant configuration
type AttributeRequest struct {
	Key      string        `json:"key" validate:"required,max=64"`
	Label    string        `json:"label" validate:"required,max=255"`
	Unit     string        `json:"unit" validate:"max=32"`
	Required *bool         `json:"required"`
	Type     string        `json:"type" validate:"omitempty,oneof=text number select"`
	Options  []interface{} `json:"options" validate:"max=200"`
}

// ProductRequest represents the product create and update payload.
// Omitting variant_config on update keeps the stored configuration.
type ProductRequest struct {
	Name               string             `json:"name" validate:"required,max=255"`
	Slug               string             `json:"slug" validate:"max=255"`
	CategoryID         string             `json:"category_id" validate:"required,uuid"`
	Description        string             `json:"description"`
	MRP                decimal.Decimal    `json:"mrp" validate:"gte=0"`
	SellingPrice       decimal.Decimal    `json:"selling_price" validate:"gte=0"`
	DiscountPercentage *decimal.Decimal   `json:"discount_percentage" validate:"omitempty,gte=0,lte=100"`
	VariantConfig      []AttributeRequest `json:"variant_config" validate:"max=50,dive"`
	Specifications     map[string]string  `json:"specifications"`
}

// VariantRequest represents the variant create and update payload. product_id is only read on create.
type VariantRequest struct {
	ProductID          string            `json:"product_id" validate:"omitempty,uuid"`
	Name               *string           `json:"name" validate:"omitempty,max=255"`
	SKU                string            `json:"sku" validate:"required,max=100"`
	Barcode            *string           `json:"barcode" validate:"omitempty,max=100"`
	Attributes         map[string]string `json:"attributes" validate:"required,min=1"`
	MRP                decimal.Decimal   `json:"mrp" validate:"gte=0"`
	SellingPrice       decimal.Decimal   `json:"selling_price" validate:"gte=0"`
	DiscountPercentage *decimal.Decimal  `json:"discount_percentage" validate:"omitempty,gte=0,lte=100"`
	Stock              *int              `json:"stock" validate:"omitempty,gte=0"`
}

// AdminHandler handles catalog management requests
type AdminHandler struct {
	admin  service.AdminService
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(admin service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger,
	}
}

// RegisterRoutes registers admin routes. Every route runs behind the given middleware.
func (h *AdminHandler) RegisterRoutes(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middlewares...)

		r.Post("/categories", h.CreateCategory)

		r.Post("/products", h.CreateProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)

		r.Post("/product-variants", h.CreateVariant)
		r.Put("/product-variants/{id}", h.UpdateVariant)
		r.Delete("/product-variants/{id}", h.DeleteVariant)
	})
}

// CreateCategory handles category creation
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	category, err := h.admin.CreateCategory(r.Context(), service.CategoryInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		respondServiceError(w, h.logger, err, "create category")
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()), zap.String("slug", category.Slug))
	middleware.RespondSuccess(w, http.StatusCreated, "Category created.", category)
}

// CreateProduct handles product creation
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.admin.CreateProduct(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.logger, err, "create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("slug", product.Slug))
	middleware.RespondSuccess(w, http.StatusCreated, "Product created.", product)
}

// UpdateProduct handles product updates
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.admin.UpdateProduct(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, h.logger, err, "update product")
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", product.ID.String()))
	middleware.RespondSuccess(w, http.StatusOK, "Product updated.", product)
}

// DeleteProduct soft deletes a product and its variants
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.admin.DeleteProduct(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondSuccess(w, http.StatusOK, "Product deleted.", nil)
}

// CreateVariant handles variant creation
func (h *AdminHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	var req VariantRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}
	if req.ProductID == "" {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "product_id", Message: "This field is required"},
		})
		return
	}

	input := req.toInput()
	input.ProductID = uuid.MustParse(req.ProductID)

	v, err := h.admin.CreateVariant(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.logger, err, "create variant")
		return
	}

	h.logger.Info("Variant created", zap.String("variant_id", v.ID.String()), zap.String("sku", v.SKU))
	middleware.RespondSuccess(w, http.StatusCreated, "Variant created.", v)
}

// UpdateVariant handles variant updates
func (h *AdminHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req VariantRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	v, err := h.admin.UpdateVariant(r.Context(), id, req.toInput())
	if err != nil {
		respondServiceError(w, h.logger, err, "update variant")
		return
	}

	h.logger.Info("Variant updated", zap.String("variant_id", v.ID.String()))
	middleware.RespondSuccess(w, http.StatusOK, "Variant updated.", v)
}

// DeleteVariant soft deletes a variant
func (h *AdminHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.admin.DeleteVariant(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete variant")
		return
	}

	h.logger.Info("Variant deleted", zap.String("variant_id", id.String()))
	middleware.RespondSuccess(w, http.StatusOK, "Variant deleted.", nil)
}

func (h *AdminHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// decodeProduct validates the payload and normalizes attribute keys before they reach the service
func (h *AdminHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return service.ProductInput{}, false
	}

	config, problems := normalizeVariantConfig(req.VariantConfig)
	if len(problems) > 0 {
		middleware.RespondWithValidationErrors(w, problems)
		return service.ProductInput{}, false
	}

	return service.ProductInput{
		Name:               req.Name,
		Slug:               req.Slug,
		CategoryID:         uuid.MustParse(req.CategoryID),
		Description:        req.Description,
		MRP:                req.MRP,
		SellingPrice:       req.SellingPrice,
		DiscountPercentage: req.DiscountPercentage,
		VariantConfig:      config,
		Specifications:     req.Specifications,
	}, true
}

// normalizeVariantConfig turns labels like "Port Size" into keys like port_size and rejects keys that collapse to nothing or collide
func normalizeVariantConfig(attrs []AttributeRequest) ([]variant.RawAttribute, []middleware.ValidationError) {
	if attrs == nil {
		return nil, nil
	}

	var problems []middleware.ValidationError
	raw := make([]variant.RawAttribute, 0, len(attrs))
	for i, a := range attrs {
		key := variant.NormalizeKey(a.Key)
		if key == "" {
			problems = append(problems, middleware.ValidationError{
				Field:   fmt.Sprintf("variant_config[%d].key", i),
				Message: "Key must contain letters or digits",
			})
			continue
		}
		raw = append(raw, variant.RawAttribute{
			Key:      key,
			Label:    a.Label,
			Unit:     a.Unit,
			Required: a.Required,
			Type:     a.Type,
			Options:  a.Options,
		})
	}

	for _, key := range variant.DuplicateKeys(raw) {
		problems = append(problems, middleware.ValidationError{
			Field:   "variant_config",
			Message: "Duplicate attribute key: " + key,
		})
	}

	return raw, problems
}

func (req VariantRequest) toInput() service.VariantInput {
	return service.VariantInput{
		Name:               req.Name,
		SKU:                req.SKU,
		Barcode:            req.Barcode,
		Attributes:         req.Attributes,
		MRP:                req.MRP,
		SellingPrice:       req.SellingPrice,
		DiscountPercentage: req.DiscountPercentage,
		Stock:              req.Stock,
	}
}
