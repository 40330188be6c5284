package repository

import (
	"errors"
	"time"

	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/pkg/logger"
	"gorm.io/gorm"
)

type EmailVerificationRepository interface {
	WithTx(tx *gorm.DB) EmailVerificationRepository
	// LockEmail serializes issuance for one email until the surrounding transaction ends
	LockEmail(email string) error
	CountCreatedSince(email string, since time.Time) (int64, error)
	SupersedeUnverified(email string) (int64, error)
	Create(verification *model.EmailVerification) error
	FindLatestByEmail(email string) (*model.EmailVerification, error)
	MarkVerified(id uint, at time.Time) (bool, error)
	ExistsVerified(email string) (bool, error)
	ConsumeByEmail(email string) (int64, error)
	PurgeUnverifiedExpiredBefore(cutoff time.Time) (int64, error)
}

type emailVerificationRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmailVerificationRepository(db *gorm.DB, log *logger.Logger) EmailVerificationRepository {
	return &emailVerificationRepository{db: db, log: log.Component("email_verification_repository")}
}

func (r *emailVerificationRepository) WithTx(tx *gorm.DB) EmailVerificationRepository {
	return &emailVerificationRepository{db: tx, log: r.log}
}

func (r *emailVerificationRepository) LockEmail(email string) error {
	// sqlite runs with a single connection so transactions are already serialized
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := r.db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", email).Error; err != nil {
		r.log.Error("Failed to acquire email lock", err, map[string]interface{}{
			"email": email,
		})
		return err
	}
	return nil
}

// CountCreatedSince counts every code issued since the given time, superseded ones included
func (r *emailVerificationRepository) CountCreatedSince(email string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Unscoped().
		Model(&model.EmailVerification{}).
		Where("email = ? AND created_at >= ?", email, since).
		Count(&count).Error
	if err != nil {
		r.log.Error("Failed to count verification records", err, map[string]interface{}{
			"email": email,
		})
		return 0, err
	}
	return count, nil
}

// SupersedeUnverified retires all pending codes of the email
func (r *emailVerificationRepository) SupersedeUnverified(email string) (int64, error) {
	result := r.db.Where("email = ? AND is_verified = ?", email, false).
		Delete(&model.EmailVerification{})
	if result.Error != nil {
		r.log.Error("Failed to supersede verification records", result.Error, map[string]interface{}{
			"email": email,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *emailVerificationRepository) Create(verification *model.EmailVerification) error {
	if err := r.db.Create(verification).Error; err != nil {
		r.log.Error("Failed to create verification record", err, map[string]interface{}{
			"email": verification.Email,
		})
		return err
	}

	r.log.Debug("Verification record created", map[string]interface{}{
		"verification_id": verification.ID,
		"email":           verification.Email,
		"expires_at":      verification.ExpiresAt,
	})
	return nil
}

func (r *emailVerificationRepository) FindLatestByEmail(email string) (*model.EmailVerification, error) {
	var verification model.EmailVerification
	err := r.db.Where("email = ?", email).
		Order("created_at DESC").
		Order("id DESC").
		First(&verification).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Error("Failed to find verification record", err, map[string]interface{}{
				"email": email,
			})
		}
		return nil, err
	}
	return &verification, nil
}

// MarkVerified flips a pending record to verified. It reports false when the
// record was verified or retired concurrently.
func (r *emailVerificationRepository) MarkVerified(id uint, at time.Time) (bool, error) {
	result := r.db.Model(&model.EmailVerification{}).
		Where("id = ? AND is_verified = ?", id, false).
		Updates(map[string]interface{}{
			"is_verified": true,
			"verified_at": at,
		})
	if result.Error != nil {
		r.log.Error("Failed to mark verification record verified", result.Error, map[string]interface{}{
			"verification_id": id,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *emailVerificationRepository) ExistsVerified(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.EmailVerification{}).
		Where("email = ? AND is_verified = ?", email, true).
		Count(&count).Error
	if err != nil {
		r.log.Error("Failed to check email verification", err, map[string]interface{}{
			"email": email,
		})
		return false, err
	}
	return count > 0, nil
}

// ConsumeByEmail retires every record of the email once it has been used for signup
func (r *emailVerificationRepository) ConsumeByEmail(email string) (int64, error) {
	result := r.db.Where("email = ?", email).Delete(&model.EmailVerification{})
	if result.Error != nil {
		r.log.Error("Failed to consume verification records", result.Error, map[string]interface{}{
			"email": email,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// PurgeUnverifiedExpiredBefore permanently removes unverified records that
// expired before cutoff, retired ones included.
func (r *emailVerificationRepository) PurgeUnverifiedExpiredBefore(cutoff time.Time) (int64, error) {
	result := r.db.Unscoped().
		Where("is_verified = ? AND expires_at < ?", false, cutoff).
		Delete(&model.EmailVerification{})
	if result.Error != nil {
		r.log.Error("Failed to purge expired verification records", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
