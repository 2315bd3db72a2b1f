package transport

import (
	"net/http"
	"strings"
	"testing"

	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAdminRouter(admin *mockAdminService) http.Handler {
	r := chi.NewRouter()
	NewAdminHandler(admin, zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestCreateCategory(t *testing.T) {
	admin := &mockAdminService{}
	router := newAdminRouter(admin)

	w, env := serve(t, router, http.MethodPost, "/api/admin/categories", `{"name":"Pneumatic Cylinders"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Pneumatic Cylinders", admin.lastCategory.Name)
}

func TestCreateCategoryValidation(t *testing.T) {
	router := newAdminRouter(&mockAdminService{})

	w, env := serve(t, router, http.MethodPost, "/api/admin/categories", `{"slug":"x"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Error.Details.ValidationErrors, 1)
	assert.Equal(t, "name", env.Error.Details.ValidationErrors[0].Field)

	w, _ = serve(t, router, http.MethodPost, "/api/admin/categories", `{"name":"x","colour":"blue"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductNormalizesConfigKeys(t *testing.T) {
	admin := &mockAdminService{}
	router := newAdminRouter(admin)
	categoryID := uuid.New()

	body := `{
		"name": "DNC Pneumatic Cylinder",
		"category_id": "` + categoryID.String() + `",
		"mrp": "5000",
		"selling_price": "4200",
		"variant_config": [
			{"key": "Bore Diameter", "label": "Bore Diameter", "unit": "mm", "type": "select", "options": ["32", 40]},
			{"key": "Mounting", "label": "Mounting Type", "required": false}
		],
		"specifications": {"Medium": "Compressed air"}
	}`
	w, _ := serve(t, router, http.MethodPost, "/api/admin/products", body)

	require.Equal(t, http.StatusCreated, w.Code)
	input := admin.lastProduct
	assert.Equal(t, categoryID, input.CategoryID)
	assert.True(t, input.SellingPrice.Equal(decimal.NewFromInt(4200)))
	require.Len(t, input.VariantConfig, 2)
	assert.Equal(t, "bore_diameter", input.VariantConfig[0].Key)
	assert.Equal(t, "mounting", input.VariantConfig[1].Key)
	require.NotNil(t, input.VariantConfig[1].Required)
	assert.False(t, *input.VariantConfig[1].Required)
	assert.Equal(t, "Compressed air", input.Specifications["Medium"])
}

func TestCreateProductRejectsBadConfig(t *testing.T) {
	testCases := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "duplicate keys after normalization",
			body:  `{"name":"X","category_id":"%s","mrp":1,"selling_price":1,"variant_config":[{"key":"Size","label":"Size"},{"key":" size ","label":"Size 2"}]}`,
			field: "variant_config",
		},
		{
			name:  "key without letters or digits",
			body:  `{"name":"X","category_id":"%s","mrp":1,"selling_price":1,"variant_config":[{"key":"°°","label":"Angle"}]}`,
			field: "variant_config[0].key",
		},
		{
			name:  "unsupported type",
			body:  `{"name":"X","category_id":"%s","mrp":1,"selling_price":1,"variant_config":[{"key":"a","label":"A","type":"range"}]}`,
			field: "variant_config[0].type",
		},
		{
			name:  "negative price",
			body:  `{"name":"X","category_id":"%s","mrp":1,"selling_price":-5}`,
			field: "selling_price",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			admin := &mockAdminService{}
			router := newAdminRouter(admin)

			body := fmtBody(tc.body, uuid.New())
			w, env := serve(t, router, http.MethodPost, "/api/admin/products", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotEmpty(t, env.Error.Details.ValidationErrors)
			assert.Equal(t, tc.field, env.Error.Details.ValidationErrors[0].Field)
			assert.Empty(t, admin.lastProduct.Name)
		})
	}
}

func TestUpdateProductWithoutConfigKeepsNil(t *testing.T) {
	admin := &mockAdminService{}
	router := newAdminRouter(admin)
	id := uuid.New()

	body := fmtBody(`{"name":"Renamed","category_id":"%s","mrp":10,"selling_price":9}`, uuid.New())
	w, _ := serve(t, router, http.MethodPut, "/api/admin/products/"+id.String(), body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, admin.lastID)
	assert.Nil(t, admin.lastProduct.VariantConfig)
}

func TestAdminServiceErrorMapping(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"duplicate slug", repository.ErrDuplicateSlug, http.StatusConflict},
		{"missing category", repository.ErrCategoryNotFound, http.StatusNotFound},
		{"unusable slug", service.ErrInvalidSlug, http.StatusUnprocessableEntity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newAdminRouter(&mockAdminService{err: tc.err})

			body := fmtBody(`{"name":"X","category_id":"%s","mrp":1,"selling_price":1}`, uuid.New())
			w, env := serve(t, router, http.MethodPost, "/api/admin/products", body)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, http.StatusText(tc.status), env.Error.Code)
		})
	}
}

func TestDeleteProduct(t *testing.T) {
	admin := &mockAdminService{}
	router := newAdminRouter(admin)
	id := uuid.New()

	w, _ := serve(t, router, http.MethodDelete, "/api/admin/products/"+id.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, admin.lastID)

	w, _ = serve(t, router, http.MethodDelete, "/api/admin/products/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	admin.err = repository.ErrProductNotFound
	w, _ = serve(t, router, http.MethodDelete, "/api/admin/products/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateVariant(t *testing.T) {
	admin := &mockAdminService{}
	router := newAdminRouter(admin)
	productID := uuid.New()

	body := fmtBody(`{"product_id":"%s","sku":"DNC-32-FT","attributes":{"diameter":"32","mounting":"Foot"},"mrp":"4500","selling_price":"4200","stock":5}`, productID)
	w, _ := serve(t, router, http.MethodPost, "/api/admin/product-variants", body)

	require.Equal(t, http.StatusCreated, w.Code)
	input := admin.lastVariant
	assert.Equal(t, productID, input.ProductID)
	assert.Equal(t, map[string]string{"diameter": "32", "mounting": "Foot"}, input.Attributes)
	require.NotNil(t, input.Stock)
	assert.Equal(t, 5, *input.Stock)
}

func TestCreateVariantValidation(t *testing.T) {
	router := newAdminRouter(&mockAdminService{})

	w, env := serve(t, router, http.MethodPost, "/api/admin/product-variants", `{"sku":"A","attributes":{"a":"1"},"mrp":1,"selling_price":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Error.Details.ValidationErrors, 1)
	assert.Equal(t, "product_id", env.Error.Details.ValidationErrors[0].Field)

	body := fmtBody(`{"product_id":"%s","sku":"A","attributes":{},"mrp":1,"selling_price":1,"stock":-1}`, uuid.New())
	w, env = serve(t, router, http.MethodPost, "/api/admin/product-variants", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var fields []string
	for _, e := range env.Error.Details.ValidationErrors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"attributes", "stock"}, fields)
}

func TestUpdateVariantMissingRequiredAttribute(t *testing.T) {
	admin := &mockAdminService{err: service.ErrMissingRequiredAttribute}
	router := newAdminRouter(admin)
	id := uuid.New()

	w, _ := serve(t, router, http.MethodPut, "/api/admin/product-variants/"+id.String(), `{"sku":"A","attributes":{"a":"1"},"mrp":1,"selling_price":1}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, id, admin.lastID)
}

func TestDeleteVariant(t *testing.T) {
	admin := &mockAdminService{}
	router := newAdminRouter(admin)
	id := uuid.New()

	w, _ := serve(t, router, http.MethodDelete, "/api/admin/product-variants/"+id.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, admin.lastID)
}

func fmtBody(format string, id uuid.UUID) string {
	return strings.Replace(format, "%s", id.String(), 1)
}
