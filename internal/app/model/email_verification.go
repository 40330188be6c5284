package model

import (
	"time"

	"gorm.io/gorm"
)

type EmailVerification struct {
	ID         uint       `gorm:"primaryKey" json:"id"`                      // 인증 ID
	Email      string     `gorm:"size:255;not null;index" json:"email"`      // 이메일
	Code       string     `gorm:"size:16;not null" json:"-"`                 // 인증코드 (노출 금지)
	IsVerified bool       `gorm:"not null;default:false" json:"is_verified"` // 인증 여부
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`                // 만료 시각
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`                   // 생성 시각
	VerifiedAt *time.Time `json:"verified_at,omitempty"`                     // 인증 완료 시각
	// 대체되거나 소비된 코드는 소프트 삭제되며 발송 횟수 제한 계산에는 계속 포함된다
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (EmailVerification) TableName() string {
	return "email_verifications"
}

// IsExpired reports whether the code can no longer be used at now
func (v *EmailVerification) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// IsValid reports whether the code is still usable at now
func (v *EmailVerification) IsValid(now time.Time) bool {
	return !v.IsVerified && !v.IsExpired(now)
}
