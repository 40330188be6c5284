package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/internal/app/repository"
	apperrors "github.com/sudays/sudays-backend/internal/errors"
	"github.com/sudays/sudays-backend/pkg/logger"
	"github.com/sudays/sudays-backend/pkg/mail"
	"github.com/sudays/sudays-backend/pkg/util"
	"gorm.io/gorm"
)

type VerificationService interface {
	SendCode(email string) (*model.EmailVerification, error)
	DispatchEmail(ctx context.Context, email, code string) bool
	VerifyCode(email, code string) (bool, error)
	IsEmailVerified(email string) (bool, error)
	CleanupExpired() (int64, error)
}

type verificationService struct {
	db     *gorm.DB
	repo   repository.EmailVerificationRepository
	sender mail.Sender
	cfg    config.EmailConfig
	log    *logger.Logger
	now    func() time.Time
}

func NewVerificationService(
	db *gorm.DB,
	repo repository.EmailVerificationRepository,
	sender mail.Sender,
	cfg config.EmailConfig,
	log *logger.Logger,
) VerificationService {
	return &verificationService{
		db:     db,
		repo:   repo,
		sender: sender,
		cfg:    cfg,
		log:    log.Component("verification_service"),
		now:    time.Now,
	}
}

// SendCode issues a new code for email, retiring any pending one.
// Count, supersede and insert run in one transaction holding a per-email lock.
func (s *verificationService) SendCode(email string) (*model.EmailVerification, error) {
	if !util.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	var issued *model.EmailVerification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.LockEmail(email); err != nil {
			return err
		}

		now := s.now()
		if s.cfg.EnableRateLimiting {
			count, err := repo.CountCreatedSince(email, now.Add(-s.cfg.RateLimitWindow()))
			if err != nil {
				return err
			}
			if count >= int64(s.cfg.MaxAttempts) {
				s.log.Warn("Verification code rate limit exceeded", map[string]interface{}{
					"email":  email,
					"recent": count,
				})
				return ErrRateLimitExceeded.WithMessage(fmt.Sprintf(
					"%d분 내 최대 %d번까지만 인증코드를 발송할 수 있습니다",
					s.cfg.RateLimitMinutes, s.cfg.MaxAttempts,
				))
			}
		}

		if _, err := repo.SupersedeUnverified(email); err != nil {
			return err
		}

		code, err := util.GenerateVerificationCode(s.cfg.CodeLength)
		if err != nil {
			return err
		}

		verification := &model.EmailVerification{
			Email:     email,
			Code:      code,
			CreatedAt: now,
			ExpiresAt: now.Add(s.cfg.CodeExpiry()),
		}
		if err := repo.Create(verification); err != nil {
			return err
		}

		issued = verification
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		s.log.Error("Failed to issue verification code", err, map[string]interface{}{
			"email": email,
		})
		return nil, apperrors.Unexpected(err)
	}

	if s.cfg.LogVerifyAttempts {
		s.log.Info("Verification code issued", map[string]interface{}{
			"email":      email,
			"expires_at": issued.ExpiresAt,
		})
	}
	return issued, nil
}

// DispatchEmail renders and sends the verification mail. Failures are logged
// and reported through the return value only.
func (s *verificationService) DispatchEmail(ctx context.Context, email, code string) bool {
	body, err := util.RenderVerificationEmail(util.VerificationEmail{
		Title:          s.cfg.Template.Title,
		Greeting:       s.cfg.Template.Greeting,
		Instruction:    s.cfg.Template.Instruction,
		Code:           code,
		ExpireMinutes:  s.cfg.CodeExpireMinutes,
		SecurityNotice: s.cfg.Template.SecurityNotice,
		Footer:         s.cfg.Template.Footer,
	})
	if err != nil {
		s.log.Error("Failed to render verification email", err, map[string]interface{}{
			"email": email,
		})
		return false
	}

	if err := s.sender.Send(ctx, email, s.cfg.Template.Subject, body); err != nil {
		if s.cfg.LogSendResults {
			s.log.Error("Failed to send verification email", err, map[string]interface{}{
				"email": email,
			})
		}
		return false
	}

	if s.cfg.LogSendResults {
		s.log.Info("Verification email sent", map[string]interface{}{
			"email": email,
		})
	}
	return true
}

func (s *verificationService) VerifyCode(email, code string) (bool, error) {
	if !util.IsNumericCode(code, s.cfg.CodeLength) {
		return false, ErrInvalidCodeFormat
	}

	verification, err := s.repo.FindLatestByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("No verification record for email", map[string]interface{}{
				"email": email,
			})
			return false, ErrVerificationNotFound
		}
		return false, apperrors.Unexpected(err)
	}

	now := s.now()
	if !verification.IsValid(now) {
		if s.cfg.LogVerifyAttempts {
			s.log.Warn("Verification code no longer valid", map[string]interface{}{
				"email":       email,
				"is_verified": verification.IsVerified,
				"expired":     verification.IsExpired(now),
			})
		}
		return false, nil
	}

	if verification.Code != code {
		if s.cfg.LogVerifyAttempts {
			s.log.Warn("Verification code mismatch", map[string]interface{}{
				"email": email,
			})
		}
		return false, nil
	}

	flipped, err := s.repo.MarkVerified(verification.ID, now)
	if err != nil {
		return false, apperrors.Unexpected(err)
	}
	if !flipped {
		// verified or superseded by a concurrent request
		return false, nil
	}

	if s.cfg.EnableAutoCleanup {
		if _, err := s.repo.SupersedeUnverified(email); err != nil {
			s.log.Warn("Failed to clean up pending codes after verification", map[string]interface{}{
				"email": email,
				"error": err.Error(),
			})
		}
	}

	s.log.Info("Email verified", map[string]interface{}{
		"email": email,
	})
	return true, nil
}

func (s *verificationService) IsEmailVerified(email string) (bool, error) {
	verified, err := s.repo.ExistsVerified(email)
	if err != nil {
		return false, apperrors.Unexpected(err)
	}
	return verified, nil
}

// CleanupExpired removes pending codes that expired before the rate limit
// window, so they no longer count toward it.
func (s *verificationService) CleanupExpired() (int64, error) {
	cutoff := s.now().Add(-s.cfg.RateLimitWindow())
	removed, err := s.repo.PurgeUnverifiedExpiredBefore(cutoff)
	if err != nil {
		return 0, err
	}

	s.log.Info("Expired verification codes purged", map[string]interface{}{
		"removed": removed,
		"cutoff":  cutoff,
	})
	return removed, nil
}
