package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/internal/errors"
	"github.com/sudays/sudays-backend/pkg/util"
)

// Context keys for member information
const (
	MemberIDKey    = "member_id"
	MemberEmailKey = "member_email"
	MemberRoleKey  = "member_role"
	AccessTokenKey = "access_token"
)

// AccessTokenCookie is the cookie the access token is issued in on login
const AccessTokenCookie = "access_token"

// TokenValidator validates access tokens including revocation
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, accessToken string) (*util.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
	}
}

// extractToken reads the bearer token from the Authorization header,
// falling back to the access token cookie.
func extractToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	// the cookie holds "Bearer <jwt>"
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		token := strings.TrimSpace(strings.TrimPrefix(cookie, "Bearer "))
		if token != "" {
			return token, true
		}
	}
	return "", false
}

// Authenticate validates the access token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := extractToken(c)
		if !ok {
			log.Warn("Missing or malformed access token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "로그인이 필요합니다")
			c.Abort()
			return
		}

		claims, err := m.tokens.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			errors.Respond(c, log, err, "authenticate")
			c.Abort()
			return
		}

		c.Set(MemberIDKey, claims.MemberID)
		c.Set(MemberEmailKey, claims.Email)
		c.Set(MemberRoleKey, model.MemberRole(claims.Role))
		c.Set(AccessTokenKey, token)

		log.Debug("Member authenticated", map[string]interface{}{
			"member_id": claims.MemberID,
			"role":      claims.Role,
		})

		c.Next()
	}
}

// RequireRole checks if the member has one of the given roles
func (m *AuthMiddleware) RequireRole(roles ...model.MemberRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetMemberRole(c)
		if !exists {
			log.Warn("Role information not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Forbidden(c, "권한 정보를 찾을 수 없습니다")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		memberID, _ := GetMemberID(c)
		log.Warn("Insufficient permissions", map[string]interface{}{
			"member_id":      memberID,
			"member_role":    role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.Forbidden(c, "접근 권한이 없습니다")
		c.Abort()
	}
}

// GetMemberID extracts the member ID from context
func GetMemberID(c *gin.Context) (uint, bool) {
	id, exists := c.Get(MemberIDKey)
	if !exists {
		return 0, false
	}
	memberID, ok := id.(uint)
	return memberID, ok
}

// GetMemberEmail extracts the member email from context
func GetMemberEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(MemberEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// GetMemberRole extracts the member role from context
func GetMemberRole(c *gin.Context) (model.MemberRole, bool) {
	role, exists := c.Get(MemberRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(model.MemberRole)
	return r, ok
}

// GetAccessToken returns the token the request was authenticated with
func GetAccessToken(c *gin.Context) string {
	return c.GetString(AccessTokenKey)
}
