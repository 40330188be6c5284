package repository

import (
	"errors"

	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/pkg/logger"
	"gorm.io/gorm"
)

type DiaryRepository interface {
	WithTx(tx *gorm.DB) DiaryRepository
	FindByID(id string) (*model.Diary, error)
	FindByMemberAndDate(memberID uint, date string) (*model.Diary, error)
	Create(diary *model.Diary) error
	Save(diary *model.Diary) error
}

type diaryRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiaryRepository(db *gorm.DB, log *logger.Logger) DiaryRepository {
	return &diaryRepository{db: db, log: log.Component("diary_repository")}
}

func (r *diaryRepository) WithTx(tx *gorm.DB) DiaryRepository {
	return &diaryRepository{db: tx, log: r.log}
}

func (r *diaryRepository) FindByID(id string) (*model.Diary, error) {
	var diary model.Diary
	if err := r.db.Where("id = ?", id).First(&diary).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Error("Failed to find diary by ID", err, map[string]interface{}{
				"diary_id": id,
			})
		}
		return nil, err
	}
	return &diary, nil
}

func (r *diaryRepository) FindByMemberAndDate(memberID uint, date string) (*model.Diary, error) {
	var diary model.Diary
	err := r.db.Where("member_id = ? AND date = ?", memberID, date).First(&diary).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Error("Failed to find diary by member and date", err, map[string]interface{}{
				"member_id": memberID,
				"date":      date,
			})
		}
		return nil, err
	}
	return &diary, nil
}

// Create inserts a new diary. A concurrent insert for the same member and
// date surfaces as gorm.ErrDuplicatedKey (or the raw driver error).
func (r *diaryRepository) Create(diary *model.Diary) error {
	r.log.Debug("Creating diary in database", map[string]interface{}{
		"diary_id":  diary.ID,
		"member_id": diary.MemberID,
		"date":      diary.Date,
	})

	if err := r.db.Create(diary).Error; err != nil {
		if !IsDuplicateKey(err) {
			r.log.Error("Failed to create diary in database", err, map[string]interface{}{
				"member_id": diary.MemberID,
				"date":      diary.Date,
			})
		}
		return err
	}
	return nil
}

func (r *diaryRepository) Save(diary *model.Diary) error {
	r.log.Debug("Updating diary in database", map[string]interface{}{
		"diary_id": diary.ID,
	})

	if err := r.db.Save(diary).Error; err != nil {
		r.log.Error("Failed to update diary in database", err, map[string]interface{}{
			"diary_id": diary.ID,
		})
		return err
	}
	return nil
}
