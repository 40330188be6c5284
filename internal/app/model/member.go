package model

import (
	"time"
)

type MemberRole string // 회원 권한 타입

const (
	RoleAdmin MemberRole = "ADMIN" // 관리자
	RoleStaff MemberRole = "STAFF" // 스태프
	RoleUser  MemberRole = "USER"  // 일반 사용자
)

func (r MemberRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleUser:
		return true
	}
	return false
}

type MemberGrade string // 회원 등급 타입

const (
	GradeMember    MemberGrade = "MEMBER"     // 정회원
	GradeNonMember MemberGrade = "NON_MEMBER" // 비회원
)

func (g MemberGrade) Valid() bool {
	return g == GradeMember || g == GradeNonMember
}

type Member struct {
	ID           uint        `gorm:"primarykey" json:"id"`                                        // 회원 ID
	Email        string      `gorm:"uniqueIndex;not null" json:"email"`                           // 이메일 (변경 불가)
	PasswordHash string      `gorm:"not null" json:"-"`                                           // 비밀번호 해시
	Nickname     string      `gorm:"uniqueIndex;not null" json:"nickname"`                        // 닉네임
	Role         MemberRole  `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`        // 권한
	Grade        MemberGrade `gorm:"type:varchar(20);not null;default:'NON_MEMBER'" json:"grade"` // 등급
	CreatedAt    time.Time   `json:"created_at"`                                                  // 생성 시각
	UpdatedAt    time.Time   `json:"updated_at"`                                                  // 수정 시각
}

func (Member) TableName() string {
	return "members"
}

// MemberUpdate lists the mutable member fields. Nil fields are left unchanged.
type MemberUpdate struct {
	Nickname *string      `json:"nickname,omitempty"`
	Password *string      `json:"password,omitempty"`
	Role     *MemberRole  `json:"role,omitempty"`
	Grade    *MemberGrade `json:"grade,omitempty"`
}

// IsEmpty reports whether the update carries no field at all
func (u MemberUpdate) IsEmpty() bool {
	return u.Nickname == nil && u.Password == nil && u.Role == nil && u.Grade == nil
}
