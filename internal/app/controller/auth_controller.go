package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/internal/app/service"
	apperrors "github.com/sudays/sudays-backend/internal/errors"
	"github.com/sudays/sudays-backend/internal/middleware"
	"github.com/sudays/sudays-backend/pkg/util"
)

const (
	refreshTokenCookie = "refresh_token"
	refreshCookiePath  = "/auth/refresh"
)

type AuthController struct {
	authService   service.AuthService
	jwt           config.JWTConfig
	secureCookies bool
}

func NewAuthController(authService service.AuthService, jwtCfg config.JWTConfig, secureCookies bool) *AuthController {
	return &AuthController{
		authService:   authService,
		jwt:           jwtCfg,
		secureCookies: secureCookies,
	}
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateMeRequest struct {
	Nickname *string `json:"nickname"`
	Password *string `json:"password"`
}

func memberResponse(m *model.Member) gin.H {
	return gin.H{
		"id":         m.ID,
		"email":      m.Email,
		"nickname":   m.Nickname,
		"role":       m.Role,
		"grade":      m.Grade,
		"created_at": m.CreatedAt,
	}
}

func (ctrl *AuthController) setAccessCookie(c *gin.Context, accessToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		middleware.AccessTokenCookie,
		"Bearer "+accessToken,
		int(ctrl.jwt.AccessTokenExpiry.Seconds()),
		"/",
		"",
		ctrl.secureCookies,
		true,
	)
}

func (ctrl *AuthController) setRefreshCookie(c *gin.Context, refreshToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		refreshTokenCookie,
		refreshToken,
		int(ctrl.jwt.RefreshTokenExpiry.Seconds()),
		refreshCookiePath,
		"",
		ctrl.secureCookies,
		true,
	)
}

func (ctrl *AuthController) clearCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", ctrl.secureCookies, true)
	c.SetCookie(refreshTokenCookie, "", -1, refreshCookiePath, "", ctrl.secureCookies, true)
}

// Signup handles member registration
// POST /auth/signup
func (ctrl *AuthController) Signup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid signup request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	member, err := ctrl.authService.Signup(util.NormalizeEmail(req.Email), req.Password, req.Nickname)
	if err != nil {
		apperrors.Respond(c, log, err, "signup")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "회원가입이 완료되었습니다",
		"member":  memberResponse(member),
	})
}

// Login accepts JSON or form credentials and issues the token pair both in
// the body and as http-only cookies
// POST /auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	member, tokens, err := ctrl.authService.Login(util.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		apperrors.Respond(c, log, err, "login")
		return
	}

	ctrl.setAccessCookie(c, tokens.AccessToken)
	ctrl.setRefreshCookie(c, tokens.RefreshToken)
	c.Header("Authorization", "Bearer "+tokens.AccessToken)

	c.JSON(http.StatusOK, gin.H{
		"message": "로그인 성공",
		"member":  memberResponse(member),
		"tokens":  tokens,
	})
}

// Refresh issues a new access token from the refresh cookie or body
// POST /auth/refresh
func (ctrl *AuthController) Refresh(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	refreshToken, _ := c.Cookie(refreshTokenCookie)
	if refreshToken == "" {
		var req RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		log.Warn("Token refresh without refresh token")
		apperrors.Unauthorized(c, "리프레시 토큰이 존재하지 않습니다")
		return
	}

	tokens, err := ctrl.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		apperrors.Respond(c, log, err, "refresh token")
		return
	}

	ctrl.setAccessCookie(c, tokens.AccessToken)
	c.Header("Authorization", "Bearer "+tokens.AccessToken)

	c.JSON(http.StatusOK, gin.H{
		"message": "토큰이 갱신되었습니다",
		"tokens":  tokens,
	})
}

// Logout revokes the current tokens and clears the cookies. Always succeeds.
// POST /auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	refreshToken, _ := c.Cookie(refreshTokenCookie)
	if refreshToken == "" {
		var req LogoutRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	ctrl.authService.Logout(c.Request.Context(), middleware.GetAccessToken(c), refreshToken)
	ctrl.clearCookies(c)

	memberID, _ := middleware.GetMemberID(c)
	log.Info("Member logged out", map[string]interface{}{
		"member_id": memberID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "로그아웃되었습니다",
	})
}

// Me returns the authenticated member
// GET /auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	memberID, exists := middleware.GetMemberID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	member, err := ctrl.authService.GetMember(memberID)
	if err != nil {
		apperrors.Respond(c, log, err, "get member")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"member": memberResponse(member),
	})
}

// UpdateMe changes nickname or password of the authenticated member
// PATCH /auth/me
func (ctrl *AuthController) UpdateMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	memberID, exists := middleware.GetMemberID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid profile update request", map[string]interface{}{
			"member_id": memberID,
			"error":     err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	member, err := ctrl.authService.UpdateMember(memberID, model.MemberUpdate{
		Nickname: req.Nickname,
		Password: req.Password,
	})
	if err != nil {
		apperrors.Respond(c, log, err, "update member")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "회원 정보가 수정되었습니다",
		"member":  memberResponse(member),
	})
}
