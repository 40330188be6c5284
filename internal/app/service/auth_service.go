package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/internal/app/repository"
	apperrors "github.com/sudays/sudays-backend/internal/errors"
	"github.com/sudays/sudays-backend/pkg/logger"
	"github.com/sudays/sudays-backend/pkg/redis"
	"github.com/sudays/sudays-backend/pkg/util"
	"gorm.io/gorm"
)

type AuthService interface {
	Signup(email, password, nickname string) (*model.Member, error)
	Login(email, password string) (*model.Member, *util.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*util.TokenPair, error)
	Logout(ctx context.Context, accessToken, refreshToken string)
	ValidateAccessToken(ctx context.Context, accessToken string) (*util.Claims, error)
	GetMember(id uint) (*model.Member, error)
	UpdateMember(id uint, update model.MemberUpdate) (*model.Member, error)
	DeleteMember(id uint) error
}

type authService struct {
	db               *gorm.DB
	memberRepo       repository.MemberRepository
	verificationRepo repository.EmailVerificationRepository
	verification     VerificationService
	blacklist        *redis.TokenBlacklist
	jwt              config.JWTConfig
	log              *logger.Logger
}

func NewAuthService(
	db *gorm.DB,
	memberRepo repository.MemberRepository,
	verificationRepo repository.EmailVerificationRepository,
	verification VerificationService,
	blacklist *redis.TokenBlacklist,
	jwtCfg config.JWTConfig,
	log *logger.Logger,
) AuthService {
	return &authService{
		db:               db,
		memberRepo:       memberRepo,
		verificationRepo: verificationRepo,
		verification:     verification,
		blacklist:        blacklist,
		jwt:              jwtCfg,
		log:              log.Component("auth_service"),
	}
}

// Signup creates a member once the email passed verification.
// Checks run in order: password policy, input format, email, nickname, verification.
func (s *authService) Signup(email, password, nickname string) (*model.Member, error) {
	s.log.Info("Attempting member signup", map[string]interface{}{
		"email":    email,
		"nickname": nickname,
	})

	if !util.ValidatePasswordPolicy(password) {
		return nil, ErrWeakPassword
	}

	nickname = strings.TrimSpace(nickname)
	if !util.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if nickname == "" {
		return nil, ErrInvalidNickname
	}

	exists, err := s.memberRepo.ExistsByEmail(email)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	if exists {
		s.log.Warn("Signup failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	exists, err = s.memberRepo.ExistsByNickname(nickname)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	if exists {
		return nil, ErrNicknameExists
	}

	verified, err := s.verification.IsEmailVerified(email)
	if err != nil {
		return nil, err
	}
	if !verified {
		s.log.Warn("Signup failed: email not verified", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailNotVerified
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		s.log.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, apperrors.Unexpected(err)
	}

	member := &model.Member{
		Email:        email,
		PasswordHash: hashedPassword,
		Nickname:     nickname,
		Role:         model.RoleUser,
		Grade:        model.GradeNonMember,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.memberRepo.WithTx(tx).Create(member); err != nil {
			return err
		}
		// a verification only admits one account
		_, err := s.verificationRepo.WithTx(tx).ConsumeByEmail(email)
		return err
	})
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, s.signupConflict(email, nickname)
		}
		return nil, apperrors.Unexpected(err)
	}

	s.log.Info("Member signed up", map[string]interface{}{
		"member_id": member.ID,
		"email":     member.Email,
	})
	return member, nil
}

// signupConflict names the unique column a racing signup took first.
// The translated duplicate-key error carries no column, so the email is
// looked up again once the failed transaction has rolled back.
func (s *authService) signupConflict(email, nickname string) error {
	s.log.Warn("Signup lost a race on a unique column", map[string]interface{}{
		"email":    email,
		"nickname": nickname,
	})

	taken, err := s.memberRepo.ExistsByEmail(email)
	if err != nil {
		return apperrors.Unexpected(err)
	}
	if taken {
		return ErrEmailAlreadyExists
	}
	return ErrNicknameExists
}

func (s *authService) Login(email, password string) (*model.Member, *util.TokenPair, error) {
	member, err := s.memberRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("Login failed: unknown email", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, apperrors.Unexpected(err)
	}

	if !util.VerifyPassword(member.PasswordHash, password) {
		s.log.Warn("Login failed: wrong password", map[string]interface{}{
			"member_id": member.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(
		member.ID,
		member.Email,
		string(member.Role),
		s.jwt.Secret,
		s.jwt.AccessTokenExpiry,
		s.jwt.RefreshTokenExpiry,
	)
	if err != nil {
		s.log.Error("Failed to generate tokens", err, map[string]interface{}{
			"member_id": member.ID,
		})
		return nil, nil, apperrors.Unexpected(err)
	}

	s.log.Info("Member logged in", map[string]interface{}{
		"member_id": member.ID,
	})
	return member, tokens, nil
}

func tokenError(err error) error {
	if errors.Is(err, util.ErrExpiredToken) {
		return ErrTokenExpired
	}
	return ErrInvalidToken
}

// Refresh issues a new access token for a valid, unrevoked refresh token
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateTokenOfType(refreshToken, s.jwt.Secret, util.TokenTypeRefresh)
	if err != nil {
		return nil, tokenError(err)
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	// pick up role changes made since login
	member, err := s.memberRepo.FindByID(claims.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, apperrors.Unexpected(err)
	}

	accessToken, err := util.GenerateAccessToken(
		member.ID,
		member.Email,
		string(member.Role),
		s.jwt.Secret,
		s.jwt.AccessTokenExpiry,
	)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}

	return &util.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwt.AccessTokenExpiry.Seconds()),
	}, nil
}

// ValidateAccessToken checks signature, expiry, type and revocation of an access token
func (s *authService) ValidateAccessToken(ctx context.Context, accessToken string) (*util.Claims, error) {
	claims, err := util.ValidateTokenOfType(accessToken, s.jwt.Secret, util.TokenTypeAccess)
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *authService) checkRevoked(ctx context.Context, claims *util.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		// fail open when Redis is unavailable
		s.log.Warn("Token revocation check failed", map[string]interface{}{
			"member_id": claims.MemberID,
			"error":     err.Error(),
		})
		return nil
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

// Logout revokes the given tokens until they expire. Failures are only logged.
func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) {
	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}
		claims, err := util.ValidateToken(token, s.jwt.Secret)
		if err != nil {
			continue
		}
		if err := s.blacklist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			s.log.Warn("Failed to revoke token on logout", map[string]interface{}{
				"member_id":  claims.MemberID,
				"token_type": claims.TokenType,
				"error":      err.Error(),
			})
		}
	}
}

func (s *authService) GetMember(id uint) (*model.Member, error) {
	member, err := s.memberRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, apperrors.Unexpected(err)
	}
	return member, nil
}

// UpdateMember applies the non-nil fields of update
func (s *authService) UpdateMember(id uint, update model.MemberUpdate) (*model.Member, error) {
	if update.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	member, err := s.GetMember(id)
	if err != nil {
		return nil, err
	}

	if update.Nickname != nil {
		nickname := strings.TrimSpace(*update.Nickname)
		if nickname == "" {
			return nil, ErrInvalidNickname
		}
		if nickname != member.Nickname {
			taken, err := s.memberRepo.ExistsByNickname(nickname)
			if err != nil {
				return nil, apperrors.Unexpected(err)
			}
			if taken {
				return nil, ErrNicknameExists
			}
			member.Nickname = nickname
		}
	}

	if update.Password != nil {
		if !util.ValidatePasswordPolicy(*update.Password) {
			return nil, ErrWeakPassword
		}
		hashed, err := util.HashPassword(*update.Password)
		if err != nil {
			return nil, apperrors.Unexpected(err)
		}
		member.PasswordHash = hashed
	}

	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, ErrInvalidRole
		}
		member.Role = *update.Role
	}

	if update.Grade != nil {
		if !update.Grade.Valid() {
			return nil, ErrInvalidGrade
		}
		member.Grade = *update.Grade
	}

	if err := s.memberRepo.Update(member); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrNicknameExists
		}
		return nil, apperrors.Unexpected(err)
	}

	s.log.Info("Member updated", map[string]interface{}{
		"member_id":        member.ID,
		"nickname_changed": update.Nickname != nil,
		"password_changed": update.Password != nil,
		"role_changed":     update.Role != nil,
		"grade_changed":    update.Grade != nil,
	})
	return member, nil
}

func (s *authService) DeleteMember(id uint) error {
	if err := s.memberRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return apperrors.Unexpected(err)
	}

	s.log.Info("Member deleted", map[string]interface{}{
		"member_id": id,
	})
	return nil
}
