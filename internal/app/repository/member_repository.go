package repository

import (
	"errors"

	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/pkg/logger"
	"gorm.io/gorm"
)

type MemberRepository interface {
	WithTx(tx *gorm.DB) MemberRepository
	Create(member *model.Member) error
	FindByID(id uint) (*model.Member, error)
	FindByEmail(email string) (*model.Member, error)
	ExistsByEmail(email string) (bool, error)
	ExistsByNickname(nickname string) (bool, error)
	Update(member *model.Member) error
	Delete(id uint) error
}

type memberRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMemberRepository(db *gorm.DB, log *logger.Logger) MemberRepository {
	return &memberRepository{db: db, log: log.Component("member_repository")}
}

func (r *memberRepository) WithTx(tx *gorm.DB) MemberRepository {
	return &memberRepository{db: tx, log: r.log}
}

func (r *memberRepository) Create(member *model.Member) error {
	r.log.Debug("Creating member in database", map[string]interface{}{
		"email": member.Email,
	})

	if err := r.db.Create(member).Error; err != nil {
		r.log.Error("Failed to create member in database", err, map[string]interface{}{
			"email": member.Email,
		})
		return err
	}

	r.log.Debug("Member created in database", map[string]interface{}{
		"member_id": member.ID,
		"email":     member.Email,
	})
	return nil
}

func (r *memberRepository) FindByID(id uint) (*model.Member, error) {
	var member model.Member
	if err := r.db.First(&member, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Error("Failed to find member by ID in database", err, map[string]interface{}{
				"member_id": id,
			})
		}
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindByEmail(email string) (*model.Member, error) {
	var member model.Member
	if err := r.db.Where("email = ?", email).First(&member).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Error("Failed to find member by email in database", err, map[string]interface{}{
				"email": email,
			})
		}
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Member{}).Where("email = ?", email).Count(&count).Error; err != nil {
		r.log.Error("Failed to check member email", err, map[string]interface{}{
			"email": email,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *memberRepository) ExistsByNickname(nickname string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Member{}).Where("nickname = ?", nickname).Count(&count).Error; err != nil {
		r.log.Error("Failed to check member nickname", err, map[string]interface{}{
			"nickname": nickname,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *memberRepository) Update(member *model.Member) error {
	r.log.Debug("Updating member in database", map[string]interface{}{
		"member_id": member.ID,
	})

	if err := r.db.Save(member).Error; err != nil {
		r.log.Error("Failed to update member in database", err, map[string]interface{}{
			"member_id": member.ID,
		})
		return err
	}
	return nil
}

func (r *memberRepository) Delete(id uint) error {
	r.log.Debug("Deleting member from database", map[string]interface{}{
		"member_id": id,
	})

	result := r.db.Delete(&model.Member{}, id)
	if result.Error != nil {
		r.log.Error("Failed to delete member from database", result.Error, map[string]interface{}{
			"member_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
