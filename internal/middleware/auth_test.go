package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blues/fis/internal/config"
	"github.com/blues/fis/internal/model"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:     "test-secret-at-least-16-chars",
		TokenTTLHours: 12,
	}
}

func TestGenerateToken(t *testing.T) {
	cfg := testAuthConfig()

	token, expiresAt, err := GenerateToken(42, model.RoleInvestor, cfg)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("Expected non-empty token")
	}

	wantExpiry := time.Now().Add(12 * time.Hour)
	if expiresAt.Before(wantExpiry.Add(-time.Minute)) || expiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("Expected expiry around %v, got %v", wantExpiry, expiresAt)
	}
}

func TestRequireAuth(t *testing.T) {
	cfg := testAuthConfig()

	investorToken, _, err := GenerateToken(1, model.RoleInvestor, cfg)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	adminToken, _, err := GenerateToken(2, model.RoleAdmin, cfg)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	foreignToken, _, err := GenerateToken(3, model.RoleInvestor, &config.AuthConfig{
		JWTSecret:     "another-secret-16-chars-long",
		TokenTTLHours: 12,
	})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		roles      []model.UserRole
		wantStatus int
	}{
		{name: "valid token any role", header: "Bearer " + investorToken, wantStatus: http.StatusOK},
		{name: "valid token allowed role", header: "Bearer " + adminToken, roles: []model.UserRole{model.RoleAdmin}, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "bad format", header: "Token " + investorToken, wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + foreignToken, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized},
		{name: "role not allowed", header: "Bearer " + investorToken, roles: []model.UserRole{model.RoleAdmin}, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/protected", RequireAuth(cfg, tt.roles...), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	cfg := testAuthConfig()

	expired := &config.AuthConfig{JWTSecret: cfg.JWTSecret, TokenTTLHours: -1}
	token, _, err := GenerateToken(1, model.RoleInvestor, expired)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	r := gin.New()
	r.GET("/protected", RequireAuth(cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for expired token, got %d", w.Code)
	}
}

func TestCurrentUser(t *testing.T) {
	cfg := testAuthConfig()
	token, _, err := GenerateToken(42, model.RoleIssuer, cfg)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	var gotId int64
	var gotRole model.UserRole
	r := gin.New()
	r.GET("/whoami", RequireAuth(cfg), func(c *gin.Context) {
		gotId, gotRole = CurrentUser(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotId != 42 || gotRole != model.RoleIssuer {
		t.Errorf("Expected user 42/issuer, got %d/%s", gotId, gotRole)
	}
}
