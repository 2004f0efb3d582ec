package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"

	"shop-service/internal/auth"

	"github.com/gin-gonic/gin"
)

func testEngine(t *testing.T) (*gin.Engine, *auth.Keys) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	keys := auth.NewKeysFromPair(privateKey)

	m, err := NewMid(keys)
	if err != nil {
		t.Fatalf("NewMid: %v", err)
	}

	engine := gin.New()
	engine.Use(Logger())
	protected := engine.Group("/", m.Authentication())
	protected.GET("/customer-only", m.Authorize(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}, auth.RoleCustomer))

	return engine, keys
}

func TestAuthentication_MissingHeader(t *testing.T) {
	engine, _ := testEngine(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/customer-only", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthentication_InvalidToken(t *testing.T) {
	engine, _ := testEngine(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/customer-only", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthorize_AllowsMatchingRole(t *testing.T) {
	engine, keys := testEngine(t)

	token, err := keys.GenerateToken("u1", "asha@example.com", auth.RoleCustomer)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/customer-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthorize_RejectsWrongRole(t *testing.T) {
	engine, keys := testEngine(t)

	token, err := keys.GenerateToken("u2", "shop@example.com", auth.RoleShopkeeper)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/customer-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
