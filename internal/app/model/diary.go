package model

import (
	"time"
)

type Diary struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`                             // 일기 ID (uuid)
	MemberID  uint      `gorm:"not null;uniqueIndex:uidx_member_date" json:"member_id"`            // 작성자 ID
	Date      string    `gorm:"type:varchar(8);not null;uniqueIndex:uidx_member_date" json:"date"` // 날짜 (YYYYMMDD)
	Content   string    `gorm:"type:text;not null" json:"content"`                                 // 본문
	ImageIDs  []string  `gorm:"type:text;serializer:json" json:"image_ids"`                        // 이미지 ID 목록 (순서 유지)
	CreatedAt time.Time `json:"created_at"`                                                        // 생성 시각
	UpdatedAt time.Time `json:"updated_at"`                                                        // 수정 시각
}

func (Diary) TableName() string {
	return "diaries"
}

type DiaryImage struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`      // 이미지 ID (uuid)
	DiaryID    *string   `gorm:"type:varchar(36);index" json:"diary_id"`     // 연결된 일기 ID (연결 전에는 NULL)
	FileName   string    `gorm:"not null" json:"file_name"`                  // 저장 파일명
	Extension  string    `gorm:"type:varchar(10);not null" json:"extension"` // 확장자 (.png 등)
	BasePath   string    `gorm:"not null" json:"-"`                          // 저장소 위치
	StorageKey string    `gorm:"not null" json:"-"`                          // 저장소 키
	Size       int64     `json:"size"`                                       // 바이트 크기
	CreatedAt  time.Time `json:"created_at"`                                 // 생성 시각
	UpdatedAt  time.Time `json:"updated_at"`                                 // 수정 시각
}

func (DiaryImage) TableName() string {
	return "diary_images"
}
