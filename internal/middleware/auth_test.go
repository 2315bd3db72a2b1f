package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// Feature: variant-resolution, Property 13: Admin endpoints reject missing tokens
func TestProperty_ProtectedEndpointsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without authorization header are rejected", prop.ForAll(
		func(pathSuffix string, method string) bool {
			handler := AuthMiddleware(testSecret, zap.NewNop())(okHandler())

			req := httptest.NewRequest(method, "/api/admin/"+pathSuffix, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "POST", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: variant-resolution, Property 14: Expired tokens are rejected
func TestProperty_ExpiredTokensAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("expired tokens are rejected with 401", prop.ForAll(
		func(subject string, role string) bool {
			token := signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"sub":  subject,
				"role": role,
				"exp":  time.Now().Add(-time.Hour).Unix(),
			})

			handler := AuthMiddleware(testSecret, zap.NewNop())(okHandler())
			req := httptest.NewRequest("GET", "/api/admin/products", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf("customer", "admin"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddleware_ValidTokenPopulatesContext(t *testing.T) {
	token := signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ops-42",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	var subject, role string
	handler := AuthMiddleware(testSecret, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = GetSubject(r.Context())
		role, _ = GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops-42", subject)
	assert.Equal(t, "admin", role)
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	valid := jwt.MapClaims{"sub": "ops-42", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()}

	testCases := []struct {
		name   string
		header string
	}{
		{"wrong scheme", "Basic abc"},
		{"missing token", "Bearer "},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", jwt.SigningMethodHS256, valid)},
		{"no subject", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"})},
		{"garbage", "Bearer not.a.jwt"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := AuthMiddleware(testSecret, zap.NewNop())(okHandler())
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", tc.header)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	chain := func(role string) int {
		claims := jwt.MapClaims{"sub": "someone", "exp": time.Now().Add(time.Hour).Unix()}
		if role != "" {
			claims["role"] = role
		}
		handler := AuthMiddleware(testSecret, zap.NewNop())(RequireAdmin(zap.NewNop())(okHandler()))

		req := httptest.NewRequest("POST", "/api/admin/products", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.SigningMethodHS256, claims))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, chain("admin"))
	assert.Equal(t, http.StatusForbidden, chain("customer"))
	assert.Equal(t, http.StatusForbidden, chain(""))
}

func TestRequireRoleWithoutAuthContext(t *testing.T) {
	handler := RequireRole([]string{"editor", RoleAdmin}, zap.NewNop())(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
