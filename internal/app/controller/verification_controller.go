package controller

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sudays/sudays-backend/internal/app/service"
	apperrors "github.com/sudays/sudays-backend/internal/errors"
	"github.com/sudays/sudays-backend/internal/middleware"
	"github.com/sudays/sudays-backend/pkg/util"
)

const emailDispatchTimeout = 30 * time.Second

// DeliveryObserver is told about every verification email handed to the provider
type DeliveryObserver interface {
	ObserveVerificationEmail(sent bool)
}

type VerificationController struct {
	verification service.VerificationService
	observer     DeliveryObserver
	pending      sync.WaitGroup
}

func NewVerificationController(verification service.VerificationService, observer DeliveryObserver) *VerificationController {
	return &VerificationController{
		verification: verification,
		observer:     observer,
	}
}

type SendVerificationRequest struct {
	Email string `json:"email" binding:"required"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// SendVerification issues a code and mails it in the background.
// The response does not wait for delivery.
// POST /email/send-verification
func (ctrl *VerificationController) SendVerification(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid verification request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}
	email := util.NormalizeEmail(req.Email)

	verification, err := ctrl.verification.SendCode(email)
	if err != nil {
		apperrors.Respond(c, log, err, "send verification")
		return
	}

	ctrl.pending.Add(1)
	go func(email, code string) {
		defer ctrl.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), emailDispatchTimeout)
		defer cancel()

		sent := ctrl.verification.DispatchEmail(ctx, email, code)
		if ctrl.observer != nil {
			ctrl.observer.ObserveVerificationEmail(sent)
		}
	}(email, verification.Code)

	c.JSON(http.StatusOK, gin.H{
		"message":    "인증코드가 발송되었습니다",
		"email":      email,
		"expires_at": verification.ExpiresAt,
	})
}

// Wait blocks until background email deliveries have finished
func (ctrl *VerificationController) Wait() {
	ctrl.pending.Wait()
}

// VerifyCode
// POST /email/verify-code
func (ctrl *VerificationController) VerifyCode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}
	email := util.NormalizeEmail(req.Email)

	ok, err := ctrl.verification.VerifyCode(email, req.Code)
	if err != nil {
		apperrors.Respond(c, log, err, "verify code")
		return
	}
	if !ok {
		apperrors.BadRequest(c, apperrors.VerifyCodeInvalid, "유효하지 않거나 만료된 인증코드입니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "이메일 인증이 완료되었습니다",
		"email":    email,
		"verified": true,
	})
}

// VerificationStatus
// GET /email/verification-status/:email
func (ctrl *VerificationController) VerificationStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	email := util.NormalizeEmail(c.Param("email"))
	if !util.IsValidEmail(email) {
		apperrors.Respond(c, log, service.ErrInvalidEmail, "verification status")
		return
	}

	verified, err := ctrl.verification.IsEmailVerified(email)
	if err != nil {
		apperrors.Respond(c, log, err, "verification status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":       email,
		"is_verified": verified,
		"checked_at":  time.Now(),
	})
}
