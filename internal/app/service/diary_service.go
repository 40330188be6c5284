package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/internal/app/repository"
	apperrors "github.com/sudays/sudays-backend/internal/errors"
	"github.com/sudays/sudays-backend/internal/storage"
	"github.com/sudays/sudays-backend/pkg/logger"
	"github.com/sudays/sudays-backend/pkg/util"
	"gorm.io/gorm"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ImageUpload is one image attached to a diary save request
type ImageUpload struct {
	FileName string
	Size     int64
	Content  io.Reader
}

type UpsertDiaryInput struct {
	MemberID uint
	Date     string
	Content  string
	Images   []ImageUpload
}

type DiaryService interface {
	UpsertDiary(ctx context.Context, input UpsertDiaryInput) (*model.Diary, error)
	GetDiary(memberID uint, date string) (*model.Diary, []model.DiaryImage, error)
	GetDiaryImage(ctx context.Context, imageID string, memberID uint) ([]byte, string, error)
}

type diaryService struct {
	db        *gorm.DB
	diaryRepo repository.DiaryRepository
	imageRepo repository.DiaryImageRepository
	blobs     storage.BlobStorage
	cfg       config.DiaryConfig
	log       *logger.Logger
	now       func() time.Time
}

func NewDiaryService(
	db *gorm.DB,
	diaryRepo repository.DiaryRepository,
	imageRepo repository.DiaryImageRepository,
	blobs storage.BlobStorage,
	cfg config.DiaryConfig,
	log *logger.Logger,
) DiaryService {
	return &diaryService{
		db:        db,
		diaryRepo: diaryRepo,
		imageRepo: imageRepo,
		blobs:     blobs,
		cfg:       cfg,
		log:       log.Component("diary_service"),
		now:       time.Now,
	}
}

func imageExtension(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}

func (s *diaryService) validate(input UpsertDiaryInput) error {
	if _, ok := util.ParseDiaryDate(input.Date); !ok {
		return ErrInvalidDate
	}
	if strings.TrimSpace(input.Content) == "" {
		return ErrEmptyContent
	}
	if len(input.Images) > s.cfg.MaxImages {
		return ErrTooManyImages.WithMessage(fmt.Sprintf("최대 %d개의 이미지만 업로드할 수 있습니다", s.cfg.MaxImages))
	}
	for _, img := range input.Images {
		if !allowedImageExtensions[imageExtension(img.FileName)] {
			return ErrUnsupportedImageType
		}
		if img.Size > s.cfg.MaxImageBytes {
			return s.tooLarge()
		}
	}
	return nil
}

func (s *diaryService) tooLarge() error {
	return ErrImageTooLarge.WithMessage(fmt.Sprintf(
		"이미지 크기가 너무 큽니다. 최대 %dMB까지 허용됩니다", s.cfg.MaxImageBytes/1024/1024,
	))
}

// UpsertDiary saves the diary of a member for one day together with its images.
// Images are staged unlinked, then the diary write and the linking commit
// in one transaction. Blobs written by a failed call are removed.
func (s *diaryService) UpsertDiary(ctx context.Context, input UpsertDiaryInput) (*model.Diary, error) {
	s.log.Info("Saving diary", map[string]interface{}{
		"member_id": input.MemberID,
		"date":      input.Date,
		"images":    len(input.Images),
	})

	if err := s.validate(input); err != nil {
		s.log.Warn("Diary validation failed", map[string]interface{}{
			"member_id": input.MemberID,
			"date":      input.Date,
			"error":     err.Error(),
		})
		return nil, err
	}

	staged, err := s.stageImages(ctx, input.Images)
	if err != nil {
		s.discardBlobs(staged)
		return nil, err
	}

	imageIDs := make([]string, 0, len(staged))
	for _, img := range staged {
		imageIDs = append(imageIDs, img.ID)
	}

	var saved *model.Diary
	err = s.db.Transaction(func(tx *gorm.DB) error {
		images := s.imageRepo.WithTx(tx)
		if err := images.CreateBatch(staged); err != nil {
			return err
		}

		diary, err := s.upsert(tx, input, imageIDs)
		if err != nil {
			return err
		}

		linked, err := images.LinkToDiary(imageIDs, diary.ID)
		if err != nil {
			return err
		}
		if linked != int64(len(imageIDs)) {
			return fmt.Errorf("linked %d of %d staged images", linked, len(imageIDs))
		}

		saved = diary
		return nil
	})
	if err != nil {
		s.discardBlobs(staged)
		s.log.Error("Failed to save diary", err, map[string]interface{}{
			"member_id": input.MemberID,
			"date":      input.Date,
		})
		return nil, apperrors.Unexpected(err)
	}

	s.log.Info("Diary saved", map[string]interface{}{
		"diary_id":  saved.ID,
		"member_id": saved.MemberID,
		"date":      saved.Date,
	})
	return saved, nil
}

// stageImages reads and stores every image. The returned slice holds the
// images written so far even when an error is returned.
func (s *diaryService) stageImages(ctx context.Context, uploads []ImageUpload) ([]*model.DiaryImage, error) {
	staged := make([]*model.DiaryImage, 0, len(uploads))

	for _, upload := range uploads {
		// read one byte past the cap to catch a lying declared size
		data, err := io.ReadAll(io.LimitReader(upload.Content, s.cfg.MaxImageBytes+1))
		if err != nil {
			return staged, apperrors.Unexpected(fmt.Errorf("read image %q: %w", upload.FileName, err))
		}
		if int64(len(data)) > s.cfg.MaxImageBytes {
			return staged, s.tooLarge()
		}

		id := uuid.NewString()
		ext := imageExtension(upload.FileName)
		key := id + ext

		if err := s.blobs.Write(ctx, key, data); err != nil {
			return staged, apperrors.Unexpected(fmt.Errorf("store image %q: %w", upload.FileName, err))
		}

		staged = append(staged, &model.DiaryImage{
			ID:         id,
			FileName:   id,
			Extension:  ext,
			BasePath:   s.blobs.Location(),
			StorageKey: key,
			Size:       int64(len(data)),
		})
		s.log.Debug("Image staged", map[string]interface{}{
			"image_id": id,
			"size":     len(data),
		})
	}

	return staged, nil
}

func (s *diaryService) discardBlobs(images []*model.DiaryImage) {
	// independent of the request context so a canceled request still cleans up
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, img := range images {
		if err := s.blobs.Delete(ctx, img.StorageKey); err != nil {
			s.log.Warn("Failed to remove orphaned image blob", map[string]interface{}{
				"image_id": img.ID,
				"key":      img.StorageKey,
				"error":    err.Error(),
			})
		}
	}
}

// upsert updates the diary of (member, date) or creates it. A concurrent
// insert of the same pair is absorbed by re-reading and updating once.
func (s *diaryService) upsert(tx *gorm.DB, input UpsertDiaryInput, imageIDs []string) (*model.Diary, error) {
	diaries := s.diaryRepo.WithTx(tx)

	existing, err := diaries.FindByMemberAndDate(input.MemberID, input.Date)
	if err == nil {
		return s.update(diaries, existing, input.Content, imageIDs)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	diary := &model.Diary{
		ID:       uuid.NewString(),
		MemberID: input.MemberID,
		Date:     input.Date,
		Content:  input.Content,
		ImageIDs: imageIDs,
	}

	// savepoint keeps the outer transaction usable after a unique violation
	err = tx.Transaction(func(sp *gorm.DB) error {
		return s.diaryRepo.WithTx(sp).Create(diary)
	})
	if err == nil {
		return diary, nil
	}
	if !repository.IsDuplicateKey(err) {
		return nil, err
	}

	s.log.Warn("Concurrent diary insert detected, updating instead", map[string]interface{}{
		"member_id": input.MemberID,
		"date":      input.Date,
	})
	existing, err = diaries.FindByMemberAndDate(input.MemberID, input.Date)
	if err != nil {
		return nil, err
	}
	return s.update(diaries, existing, input.Content, imageIDs)
}

func (s *diaryService) update(diaries repository.DiaryRepository, diary *model.Diary, content string, imageIDs []string) (*model.Diary, error) {
	diary.Content = content
	diary.ImageIDs = imageIDs
	diary.UpdatedAt = s.now()
	if err := diaries.Save(diary); err != nil {
		return nil, err
	}
	return diary, nil
}

func (s *diaryService) GetDiary(memberID uint, date string) (*model.Diary, []model.DiaryImage, error) {
	if _, ok := util.ParseDiaryDate(date); !ok {
		return nil, nil, ErrInvalidDate
	}

	diary, err := s.diaryRepo.FindByMemberAndDate(memberID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrDiaryNotFound
		}
		return nil, nil, apperrors.Unexpected(err)
	}

	found, err := s.imageRepo.FindByIDs(diary.ImageIDs)
	if err != nil {
		return nil, nil, apperrors.Unexpected(err)
	}

	byID := make(map[string]model.DiaryImage, len(found))
	for _, img := range found {
		byID[img.ID] = img
	}
	images := make([]model.DiaryImage, 0, len(diary.ImageIDs))
	for _, id := range diary.ImageIDs {
		if img, ok := byID[id]; ok {
			images = append(images, img)
		}
	}

	return diary, images, nil
}

// GetDiaryImage returns the bytes of an image and its extension without the dot.
// Images of other members and unlinked images are reported as forbidden.
func (s *diaryService) GetDiaryImage(ctx context.Context, imageID string, memberID uint) ([]byte, string, error) {
	if _, err := uuid.Parse(imageID); err != nil {
		return nil, "", ErrImageNotFound
	}

	image, err := s.imageRepo.FindByID(imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrImageNotFound
		}
		return nil, "", apperrors.Unexpected(err)
	}

	if image.DiaryID == nil {
		return nil, "", ErrImageForbidden
	}

	diary, err := s.diaryRepo.FindByID(*image.DiaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrImageForbidden
		}
		return nil, "", apperrors.Unexpected(err)
	}
	if diary.MemberID != memberID {
		s.log.Warn("Image access denied", map[string]interface{}{
			"image_id":  imageID,
			"member_id": memberID,
		})
		return nil, "", ErrImageForbidden
	}

	data, err := s.blobs.Read(ctx, image.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			s.log.Warn("Image metadata has no stored blob", map[string]interface{}{
				"image_id": imageID,
				"key":      image.StorageKey,
			})
			return nil, "", ErrImageNotFound
		}
		return nil, "", apperrors.Unexpected(err)
	}

	return data, strings.TrimPrefix(image.Extension, "."), nil
}
