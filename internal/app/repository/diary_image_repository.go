package repository

import (
	"errors"

	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/pkg/logger"
	"gorm.io/gorm"
)

type DiaryImageRepository interface {
	WithTx(tx *gorm.DB) DiaryImageRepository
	CreateBatch(images []*model.DiaryImage) error
	FindByID(id string) (*model.DiaryImage, error)
	FindByIDs(ids []string) ([]model.DiaryImage, error)
	LinkToDiary(ids []string, diaryID string) (int64, error)
}

type diaryImageRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiaryImageRepository(db *gorm.DB, log *logger.Logger) DiaryImageRepository {
	return &diaryImageRepository{db: db, log: log.Component("diary_image_repository")}
}

func (r *diaryImageRepository) WithTx(tx *gorm.DB) DiaryImageRepository {
	return &diaryImageRepository{db: tx, log: r.log}
}

// CreateBatch stores image metadata rows that are not yet linked to a diary
func (r *diaryImageRepository) CreateBatch(images []*model.DiaryImage) error {
	if len(images) == 0 {
		return nil
	}

	if err := r.db.Create(images).Error; err != nil {
		r.log.Error("Failed to create diary images", err, map[string]interface{}{
			"count": len(images),
		})
		return err
	}
	return nil
}

func (r *diaryImageRepository) FindByID(id string) (*model.DiaryImage, error) {
	var image model.DiaryImage
	if err := r.db.Where("id = ?", id).First(&image).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Error("Failed to find diary image", err, map[string]interface{}{
				"image_id": id,
			})
		}
		return nil, err
	}
	return &image, nil
}

func (r *diaryImageRepository) FindByIDs(ids []string) ([]model.DiaryImage, error) {
	var images []model.DiaryImage
	if len(ids) == 0 {
		return images, nil
	}

	if err := r.db.Where("id IN ?", ids).Find(&images).Error; err != nil {
		r.log.Error("Failed to find diary images", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return images, nil
}

// LinkToDiary backfills diary_id on staged images and returns the number of rows linked
func (r *diaryImageRepository) LinkToDiary(ids []string, diaryID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.Model(&model.DiaryImage{}).
		Where("id IN ? AND diary_id IS NULL", ids).
		Update("diary_id", diaryID)
	if result.Error != nil {
		r.log.Error("Failed to link diary images", result.Error, map[string]interface{}{
			"diary_id": diaryID,
			"count":    len(ids),
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
