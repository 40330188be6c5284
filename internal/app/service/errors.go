package service

import (
	apperrors "github.com/sudays/sudays-backend/internal/errors"
)

var (
	// Account
	ErrInvalidEmail       = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidEmail, "올바른 이메일 형식이 아닙니다")
	ErrInvalidNickname    = apperrors.New(apperrors.KindValidation, apperrors.ValidationNickname, "닉네임은 필수 항목입니다")
	ErrInvalidRole        = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidRole, "올바르지 않은 권한입니다")
	ErrInvalidGrade       = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidGrade, "올바르지 않은 등급입니다")
	ErrEmptyUpdate        = apperrors.New(apperrors.KindValidation, apperrors.ValidationEmptyUpdate, "변경할 항목이 없습니다")
	ErrWeakPassword       = apperrors.New(apperrors.KindPolicy, apperrors.AuthWeakPassword, "비밀번호는 8자 이상이며 대문자, 소문자, 숫자, 특수문자 중 3가지 이상을 포함해야 합니다")
	ErrEmailAlreadyExists = apperrors.New(apperrors.KindConflict, apperrors.AuthEmailAlreadyExists, "이미 사용 중인 이메일입니다")
	ErrNicknameExists     = apperrors.New(apperrors.KindConflict, apperrors.AuthNicknameExists, "이미 사용 중인 닉네임입니다")
	ErrEmailNotVerified   = apperrors.New(apperrors.KindPolicy, apperrors.AuthEmailNotVerified, "이메일 인증이 완료되지 않았습니다")
	ErrInvalidCredentials = apperrors.New(apperrors.KindAuthentication, apperrors.AuthInvalidCredentials, "이메일 또는 비밀번호가 올바르지 않습니다")
	ErrInvalidToken       = apperrors.New(apperrors.KindAuthentication, apperrors.AuthTokenInvalid, "유효하지 않은 토큰입니다")
	ErrTokenExpired       = apperrors.New(apperrors.KindAuthentication, apperrors.AuthTokenExpired, "토큰이 만료되었습니다")
	ErrTokenRevoked       = apperrors.New(apperrors.KindAuthentication, apperrors.AuthTokenRevoked, "로그아웃된 토큰입니다")
	ErrMemberNotFound     = apperrors.New(apperrors.KindNotFound, apperrors.AuthMemberNotFound, "회원을 찾을 수 없습니다")

	// Email verification
	ErrRateLimitExceeded    = apperrors.New(apperrors.KindRateLimit, apperrors.VerifyRateLimited, "인증코드 발송 횟수를 초과했습니다")
	ErrVerificationNotFound = apperrors.New(apperrors.KindNotFound, apperrors.VerifyNotRequested, "인증 요청 내역이 없습니다")
	ErrInvalidCodeFormat    = apperrors.New(apperrors.KindValidation, apperrors.VerifyCodeFormat, "인증코드 형식이 올바르지 않습니다")

	// Diary
	ErrInvalidDate          = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidDate, "올바른 날짜 형식이 아닙니다. (YYYYMMDD)")
	ErrEmptyContent         = apperrors.New(apperrors.KindValidation, apperrors.DiaryEmptyContent, "일기 내용은 비어있을 수 없습니다")
	ErrTooManyImages        = apperrors.New(apperrors.KindPolicy, apperrors.UploadTooManyFiles, "최대 5개의 이미지만 업로드할 수 있습니다")
	ErrUnsupportedImageType = apperrors.New(apperrors.KindPolicy, apperrors.UploadInvalidFileType, "지원하지 않는 이미지 형식입니다. 허용된 형식: .jpg, .jpeg, .png, .gif")
	ErrImageTooLarge        = apperrors.New(apperrors.KindPolicy, apperrors.UploadFileTooLarge, "이미지 크기가 너무 큽니다. 최대 5MB까지 허용됩니다")
	ErrDiaryNotFound        = apperrors.New(apperrors.KindNotFound, apperrors.DiaryNotFound, "일기를 찾을 수 없습니다")
	ErrImageNotFound        = apperrors.New(apperrors.KindNotFound, apperrors.DiaryImageNotFound, "이미지를 찾을 수 없습니다")
	ErrImageForbidden       = apperrors.New(apperrors.KindForbidden, apperrors.AuthzOwnerOnly, "이미지에 접근할 권한이 없습니다")
)
