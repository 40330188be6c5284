package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // 로그인 필요
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // 잘못된 이메일/비밀번호
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // 토큰 만료
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // 잘못된 토큰
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // 토큰 폐기됨
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // 이메일 중복
	AuthNicknameExists     = "AUTH_NICKNAME_EXISTS"     // 닉네임 중복
	AuthEmailNotVerified   = "AUTH_EMAIL_NOT_VERIFIED"  // 이메일 미인증
	AuthWeakPassword       = "AUTH_WEAK_PASSWORD"       // 비밀번호 정책 위반
	AuthMemberNotFound     = "AUTH_MEMBER_NOT_FOUND"    // 회원 없음

	// ==================== 이메일 인증 (VERIFY_) ====================
	VerifyRateLimited  = "VERIFY_RATE_LIMITED"  // 발송 횟수 초과
	VerifyNotRequested = "VERIFY_NOT_REQUESTED" // 인증 요청 내역 없음
	VerifyCodeInvalid  = "VERIFY_CODE_INVALID"  // 잘못되었거나 만료된 인증코드
	VerifyCodeFormat   = "VERIFY_CODE_FORMAT"   // 인증코드 형식 오류

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // 접근 권한 없음
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY" // 관리자만 가능
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // 소유자만 가능

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 잘못된 입력
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // 잘못된 ID
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // 잘못된 형식
	ValidationInvalidDate   = "VALIDATION_INVALID_DATE"   // 잘못된 날짜
	ValidationRequired      = "VALIDATION_REQUIRED"       // 필수 항목
	ValidationInvalidEmail  = "VALIDATION_INVALID_EMAIL"  // 잘못된 이메일
	ValidationNickname      = "VALIDATION_NICKNAME"       // 닉네임 누락
	ValidationInvalidRole   = "VALIDATION_INVALID_ROLE"   // 잘못된 권한
	ValidationInvalidGrade  = "VALIDATION_INVALID_GRADE"  // 잘못된 등급
	ValidationEmptyUpdate   = "VALIDATION_EMPTY_UPDATE"   // 변경 항목 없음

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 일기 (DIARY_) ====================
	DiaryNotFound      = "DIARY_NOT_FOUND"       // 일기 없음
	DiaryEmptyContent  = "DIARY_EMPTY_CONTENT"   // 본문 없음
	DiaryImageNotFound = "DIARY_IMAGE_NOT_FOUND" // 이미지 없음

	// ==================== 업로드 (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // 잘못된 파일 형식
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"    // 파일 크기 초과
	UploadTooManyFiles    = "UPLOAD_TOO_MANY_FILES"    // 파일 개수 초과

	// ==================== 요청 제한 (RATE_) ====================
	RateLimitExceeded = "RATE_LIMIT_EXCEEDED" // 요청이 너무 많음

	// ==================== 서버 (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR" // 서버 오류
	InternalDatabase    = "INTERNAL_DATABASE"     // 데이터베이스 오류
	InternalExternalAPI = "INTERNAL_EXTERNAL_API" // 외부 서비스 오류
)
