package controller

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/internal/app/service"
	apperrors "github.com/sudays/sudays-backend/internal/errors"
	"github.com/sudays/sudays-backend/internal/middleware"
)

type DiaryController struct {
	diaryService service.DiaryService
}

func NewDiaryController(diaryService service.DiaryService) *DiaryController {
	return &DiaryController{diaryService: diaryService}
}

func imageURL(id string) string {
	return "/diary/image/" + id
}

func diaryResponse(d *model.Diary, images []model.DiaryImage) gin.H {
	imageList := make([]gin.H, 0, len(images))
	for _, img := range images {
		imageList = append(imageList, gin.H{
			"id":        img.ID,
			"extension": img.Extension,
			"size":      img.Size,
			"url":       imageURL(img.ID),
		})
	}

	return gin.H{
		"id":         d.ID,
		"date":       d.Date,
		"content":    d.Content,
		"image_ids":  d.ImageIDs,
		"images":     imageList,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
}

// GetDiary returns the diary of the authenticated member for a day
// GET /diary/:date
func (ctrl *DiaryController) GetDiary(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	memberID, exists := middleware.GetMemberID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	diary, images, err := ctrl.diaryService.GetDiary(memberID, c.Param("date"))
	if err != nil {
		apperrors.Respond(c, log, err, "get diary")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"diary": diaryResponse(diary, images),
	})
}

// SaveDiary creates or replaces the diary for a day.
// Multipart fields: date, content and any number of images.
// POST /diary/
func (ctrl *DiaryController) SaveDiary(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	memberID, exists := middleware.GetMemberID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		log.Warn("Invalid diary form", map[string]interface{}{
			"member_id": memberID,
			"error":     err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "multipart/form-data 형식으로 요청해주세요")
		return
	}

	var files []*multipart.FileHeader
	files = append(files, form.File["images"]...)
	files = append(files, form.File["images[]"]...)

	uploads := make([]service.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeAll(uploads)
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "이미지 파일을 읽을 수 없습니다")
			return
		}
		uploads = append(uploads, service.ImageUpload{
			FileName: fh.Filename,
			Size:     fh.Size,
			Content:  f,
		})
	}
	defer closeAll(uploads)

	diary, err := ctrl.diaryService.UpsertDiary(c.Request.Context(), service.UpsertDiaryInput{
		MemberID: memberID,
		Date:     c.PostForm("date"),
		Content:  c.PostForm("content"),
		Images:   uploads,
	})
	if err != nil {
		apperrors.Respond(c, log, err, "save diary")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "일기가 저장되었습니다",
		"diary": gin.H{
			"id":         diary.ID,
			"date":       diary.Date,
			"content":    diary.Content,
			"image_ids":  diary.ImageIDs,
			"updated_at": diary.UpdatedAt,
		},
	})
}

func closeAll(uploads []service.ImageUpload) {
	for _, u := range uploads {
		if f, ok := u.Content.(multipart.File); ok {
			_ = f.Close()
		}
	}
}

// GetDiaryImage streams an image of one of the member's diaries
// GET /diary/image/:id
func (ctrl *DiaryController) GetDiaryImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	memberID, exists := middleware.GetMemberID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	data, ext, err := ctrl.diaryService.GetDiaryImage(c.Request.Context(), c.Param("id"), memberID)
	if err != nil {
		apperrors.Respond(c, log, err, "get diary image")
		return
	}

	contentType := "image/" + ext
	if ext == "jpg" {
		contentType = "image/jpeg"
	}
	c.Header("Cache-Control", "private, max-age=86400")
	c.Data(http.StatusOK, contentType, data)
}
