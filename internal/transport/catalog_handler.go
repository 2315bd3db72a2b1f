package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	attributeFilterPrefix = "attr_"
	maxCartItems          = 100
)

// CartItemRequest is one line of a cart verification payload
type CartItemRequest struct {
	VariantID string `json:"variantId" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"gte=1,lte=999"`
}

// CatalogHandler serves the public storefront endpoints
type CatalogHandler struct {
	catalog service.CatalogService
	admin   service.AdminService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog service.CatalogService, admin service.AdminService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		admin:   admin,
		logger:  logger,
	}
}

// RegisterRoutes registers the public catalog routes behind the given middleware
func (h *CatalogHandler) RegisterRoutes(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(middlewares...)

		r.Get("/api/product/details/{slug}", h.ProductDetail)
		r.Get("/api/product/details/{slug}/select", h.SelectOption)
		r.Get("/api/product-variant/attributes", h.AttributeFacets)
		r.Get("/api/shop", h.Shop)
		r.Post("/api/cart/verify", h.VerifyCart)
		r.Get("/api/categories", h.ListCategories)
	})
}

// ProductDetail returns the product page model for the attribute selection in the query
func (h *CatalogHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	detail, err := h.catalog.ProductDetail(r.Context(), slug, r.URL.Query())
	if err != nil {
		respondServiceError(w, h.logger, err, "load product")
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, "Product data found.", detail)
}

// SelectOption resolves a picker click (key=value) against the current selection in the query
func (h *CatalogHandler) SelectOption(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	key, value := strings.TrimSpace(query.Get("key")), strings.TrimSpace(query.Get("value"))

	var problems []middleware.ValidationError
	if key == "" {
		problems = append(problems, middleware.ValidationError{Field: "key", Message: "This field is required"})
	}
	if value == "" {
		problems = append(problems, middleware.ValidationError{Field: "value", Message: "This field is required"})
	}
	if len(problems) > 0 {
		middleware.RespondWithValidationErrors(w, problems)
		return
	}

	query.Del("key")
	query.Del("value")

	nav, err := h.catalog.ChangeSelection(r.Context(), chi.URLParam(r, "slug"), query, key, value)
	if err != nil {
		respondServiceError(w, h.logger, err, "resolve selection")
		return
	}

	h.logger.Debug("Selection resolved",
		zap.String("slug", chi.URLParam(r, "slug")),
		zap.String("key", key),
		zap.String("value", value),
		zap.Bool("resolved", nav.Resolved),
	)
	middleware.RespondSuccess(w, http.StatusOK, "Selection resolved.", nav)
}

// AttributeFacets lists filterable attributes, optionally for a comma separated set of category slugs
func (h *CatalogHandler) AttributeFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.catalog.AttributeFacets(r.Context(), splitCSV(r.URL.Query().Get("category")))
	if err != nil {
		respondServiceError(w, h.logger, err, "load attributes")
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, "Attributes found.", facets)
}

// Shop serves the paginated product listing
func (h *CatalogHandler) Shop(w http.ResponseWriter, r *http.Request) {
	q, problems := parseShopQuery(r)
	if len(problems) > 0 {
		middleware.RespondWithValidationErrors(w, problems)
		return
	}

	result, err := h.catalog.Shop(r.Context(), q)
	if err != nil {
		respondServiceError(w, h.logger, err, "load products")
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, "Product data found.", result)
}

func parseShopQuery(r *http.Request) (service.ShopQuery, []middleware.ValidationError) {
	values := r.URL.Query()
	q := service.ShopQuery{
		Categories: splitCSV(values.Get("category")),
		Search:     strings.TrimSpace(values.Get("q")),
		Attributes: map[string][]string{},
	}

	var problems []middleware.ValidationError
	invalid := func(field, message string) {
		problems = append(problems, middleware.ValidationError{Field: field, Message: message})
	}

	priceParam := func(name string) *decimal.Decimal {
		raw := values.Get(name)
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			invalid(name, "Value must be a non-negative number")
			return nil
		}
		return &d
	}
	q.MinPrice = priceParam("minPrice")
	q.MaxPrice = priceParam("maxPrice")

	intParam := func(name string) int {
		raw := values.Get(name)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			invalid(name, "Value must be a non-negative integer")
			return 0
		}
		return n
	}
	q.Page = intParam("page")
	q.Limit = intParam("limit")

	switch sort := repository.ProductSort(values.Get("sort")); sort {
	case "", repository.SortNewest, repository.SortNameAsc, repository.SortNameDesc,
		repository.SortPriceLowHigh, repository.SortPriceHighLow:
		q.Sort = sort
	default:
		invalid("sort", fmt.Sprintf("Value must be one of: %s %s %s %s %s",
			repository.SortNewest, repository.SortNameAsc, repository.SortNameDesc,
			repository.SortPriceLowHigh, repository.SortPriceHighLow))
	}

	for name := range values {
		key, ok := strings.CutPrefix(name, attributeFilterPrefix)
		if !ok || key == "" {
			continue
		}
		if accepted := splitCSV(values.Get(name)); len(accepted) > 0 {
			q.Attributes[key] = accepted
		}
	}

	return q, problems
}

// VerifyCart re-checks a client cart against live stock and prices
func (h *CatalogHandler) VerifyCart(w http.ResponseWriter, r *http.Request) {
	var req []CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Cart payload could not be decoded", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req) > maxCartItems {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{{Field: "items", Message: "Value is too long"}})
		return
	}

	items := make([]service.CartItem, 0, len(req))
	var problems []middleware.ValidationError
	for i := range req {
		if err := middleware.ValidateRequest(&req[i]); err != nil {
			for _, p := range middleware.FormatValidationErrors(err) {
				p.Field = fmt.Sprintf("[%d].%s", i, p.Field)
				problems = append(problems, p)
			}
			continue
		}
		items = append(items, service.CartItem{VariantID: uuid.MustParse(req[i].VariantID), Qty: req[i].Qty})
	}
	if len(problems) > 0 {
		middleware.RespondWithValidationErrors(w, problems)
		return
	}

	lines, err := h.catalog.VerifyCart(r.Context(), items)
	if err != nil {
		respondServiceError(w, h.logger, err, "verify cart")
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, "Verified Cart Data.", lines)
}

// ListCategories returns every live category
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.admin.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list categories")
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, "Categories found.", categories)
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
