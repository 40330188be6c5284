package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudays/sudays-backend/internal/app/model"
	apperrors "github.com/sudays/sudays-backend/internal/errors"
	"github.com/sudays/sudays-backend/pkg/util"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

var errRevoked = apperrors.New(apperrors.KindAuthentication, apperrors.AuthTokenRevoked, "로그아웃된 토큰입니다")

// jwtValidator checks tokens with the shared secret and treats anything in
// revoked as logged out.
type jwtValidator struct {
	revoked map[string]bool
}

func (v *jwtValidator) ValidateAccessToken(ctx context.Context, token string) (*util.Claims, error) {
	if v.revoked[token] {
		return nil, errRevoked
	}
	claims, err := util.ValidateTokenOfType(token, testJWTSecret, util.TokenTypeAccess)
	if err != nil {
		return nil, apperrors.New(apperrors.KindAuthentication, apperrors.AuthTokenInvalid, "유효하지 않은 토큰입니다")
	}
	return claims, nil
}

func setupMiddlewareTest() (*gin.Engine, *AuthMiddleware, *jwtValidator) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	validator := &jwtValidator{revoked: map[string]bool{}}
	return router, NewAuthMiddleware(validator), validator
}

func generateTestToken(t *testing.T, memberID uint, email string, role model.MemberRole) string {
	tokens, err := util.GenerateTokenPair(
		memberID,
		email,
		string(role),
		testJWTSecret,
		15*time.Minute,
		7*24*time.Hour,
	)
	require.NoError(t, err)
	return tokens.AccessToken
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest()

	token := generateTestToken(t, 7, "test@example.com", model.RoleUser)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		memberID, _ := GetMemberID(c)
		email, _ := GetMemberEmail(c)
		role, _ := GetMemberRole(c)

		c.JSON(http.StatusOK, gin.H{
			"member_id": memberID,
			"email":     email,
			"role":      role,
			"token":     GetAccessToken(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"member_id":7,"email":"test@example.com","role":"USER","token":"`+token+`"}`, w.Body.String())
}

func TestAuthMiddleware_Authenticate_Cookie(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest()
	token := generateTestToken(t, 1, "cookie@example.com", model.RoleUser)

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, value := range []string{url.QueryEscape("Bearer " + token), token} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: value})
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestAuthMiddleware_Authenticate_NoToken(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest()

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.AuthUnauthorized)
}

func TestAuthMiddleware_Authenticate_InvalidFormat(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest()

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	tests := []struct {
		name   string
		header string
	}{
		{
			name:   "Missing Bearer prefix",
			header: "invalid-token",
		},
		{
			name:   "Wrong prefix",
			header: "Basic token123",
		},
		{
			name:   "Empty token",
			header: "Bearer ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_Authenticate_InvalidToken(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest()

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid.jwt.token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.AuthTokenInvalid)
}

func TestAuthMiddleware_Authenticate_RevokedToken(t *testing.T) {
	router, authMiddleware, validator := setupMiddlewareTest()
	token := generateTestToken(t, 1, "gone@example.com", model.RoleUser)
	validator.revoked[token] = true

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.AuthTokenRevoked)
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest()

	router.GET("/staff",
		authMiddleware.Authenticate(),
		authMiddleware.RequireRole(model.RoleAdmin, model.RoleStaff),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "access granted"})
		},
	)

	tests := []struct {
		name           string
		role           model.MemberRole
		expectedStatus int
	}{
		{
			name:           "Admin role",
			role:           model.RoleAdmin,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Staff role",
			role:           model.RoleStaff,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "User role",
			role:           model.RoleUser,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := generateTestToken(t, 1, "test@example.com", tt.role)

			req := httptest.NewRequest(http.MethodGet, "/staff", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_RequireRole_WithoutAuthenticate(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest()

	router.GET("/admin", authMiddleware.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.AuthzForbidden)
}

func TestContextAccessors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	memberID, exists := GetMemberID(c)
	assert.False(t, exists)
	assert.Equal(t, uint(0), memberID)
	_, exists = GetMemberEmail(c)
	assert.False(t, exists)
	_, exists = GetMemberRole(c)
	assert.False(t, exists)
	assert.Empty(t, GetAccessToken(c))

	c.Set(MemberIDKey, uint(123))
	c.Set(MemberEmailKey, "test@example.com")
	c.Set(MemberRoleKey, model.RoleAdmin)

	memberID, exists = GetMemberID(c)
	assert.True(t, exists)
	assert.Equal(t, uint(123), memberID)

	email, exists := GetMemberEmail(c)
	assert.True(t, exists)
	assert.Equal(t, "test@example.com", email)

	role, exists := GetMemberRole(c)
	assert.True(t, exists)
	assert.Equal(t, model.RoleAdmin, role)

	// wrong type stored under the key
	c.Set(MemberIDKey, "123")
	_, exists = GetMemberID(c)
	assert.False(t, exists)
}
