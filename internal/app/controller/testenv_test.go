package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/internal/app/repository"
	"github.com/sudays/sudays-backend/internal/app/service"
	"github.com/sudays/sudays-backend/internal/db"
	"github.com/sudays/sudays-backend/internal/middleware"
	"github.com/sudays/sudays-backend/internal/storage"
	"github.com/sudays/sudays-backend/pkg/logger"
	"github.com/sudays/sudays-backend/pkg/redis"
	"github.com/sudays/sudays-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	testJWTSecret = "test-secret"
	testPassword  = "Passw0rd!"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type testEnv struct {
	router       *gin.Engine
	db           *gorm.DB
	auth         service.AuthService
	verification *VerificationController
	sender       *recordingSender
	jwt          config.JWTConfig
}

func setupTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logger.Nop()
	blobs, err := storage.NewLocalStorage(t.TempDir(), log)
	require.NoError(t, err)

	emailCfg := config.EmailConfig{
		Provider:           "console",
		CodeLength:         6,
		CodeExpireMinutes:  10,
		MaxAttempts:        3,
		RateLimitMinutes:   20,
		EnableRateLimiting: true,
		EnableAutoCleanup:  true,
		Template:           config.EmailTemplate{Subject: "[Sudays] 이메일 인증코드"},
	}
	jwtCfg := config.JWTConfig{
		Secret:             testJWTSecret,
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
	}

	memberRepo := repository.NewMemberRepository(testDB, log)
	verificationRepo := repository.NewEmailVerificationRepository(testDB, log)
	sender := &recordingSender{}

	verificationService := service.NewVerificationService(testDB, verificationRepo, sender, emailCfg, log)
	authService := service.NewAuthService(testDB, memberRepo, verificationRepo, verificationService,
		redis.NewTokenBlacklist(client, log), jwtCfg, log)
	diaryService := service.NewDiaryService(testDB,
		repository.NewDiaryRepository(testDB, log),
		repository.NewDiaryImageRepository(testDB, log),
		blobs,
		config.DiaryConfig{MaxImages: 5, MaxImageBytes: 1024 * 1024},
		log,
	)

	authCtrl := NewAuthController(authService, jwtCfg, false)
	memberCtrl := NewMemberController(authService)
	verificationCtrl := NewVerificationController(verificationService, nil)
	diaryCtrl := NewDiaryController(diaryService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	router := gin.New()
	router.Use(middleware.LoggingMiddleware(log))

	authGroup := router.Group("/auth")
	authGroup.POST("/signup", authCtrl.Signup)
	authGroup.POST("/login", authCtrl.Login)
	authGroup.POST("/refresh", authCtrl.Refresh)
	authGroup.POST("/logout", authMiddleware.Authenticate(), authCtrl.Logout)
	authGroup.GET("/me", authMiddleware.Authenticate(), authCtrl.Me)
	authGroup.PATCH("/me", authMiddleware.Authenticate(), authCtrl.UpdateMe)

	admin := router.Group("/admin", authMiddleware.Authenticate(), authMiddleware.RequireRole(model.RoleAdmin))
	admin.PATCH("/members/:id", memberCtrl.UpdateMember)
	admin.DELETE("/members/:id", memberCtrl.DeleteMember)

	email := router.Group("/email")
	email.POST("/send-verification", verificationCtrl.SendVerification)
	email.POST("/verify-code", verificationCtrl.VerifyCode)
	email.GET("/verification-status/:email", verificationCtrl.VerificationStatus)

	diary := router.Group("/diary", authMiddleware.Authenticate())
	diary.GET("/:date", diaryCtrl.GetDiary)
	diary.POST("/", diaryCtrl.SaveDiary)
	diary.GET("/image/:id", diaryCtrl.GetDiaryImage)

	return &testEnv{
		router:       router,
		db:           testDB,
		auth:         authService,
		verification: verificationCtrl,
		sender:       sender,
		jwt:          jwtCfg,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(req)
}

// latestCode reads the newest code for email straight from the database
func (e *testEnv) latestCode(t *testing.T, email string) string {
	var v model.EmailVerification
	require.NoError(t, e.db.Where("email = ?", email).Order("created_at DESC, id DESC").First(&v).Error)
	return v.Code
}

func (e *testEnv) verifyEmail(t *testing.T, email string) {
	w := e.doJSON(t, http.MethodPost, "/email/send-verification", gin.H{"email": email}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.doJSON(t, http.MethodPost, "/email/verify-code", gin.H{"email": email, "code": e.latestCode(t, email)}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	e.verification.Wait()
}

// registerMember signs up a verified member and returns an access token
func (e *testEnv) registerMember(t *testing.T, email, nickname string) (uint, string) {
	e.verifyEmail(t, email)
	member, err := e.auth.Signup(email, testPassword, nickname)
	require.NoError(t, err)

	_, tokens, err := e.auth.Login(email, testPassword)
	require.NoError(t, err)
	return member.ID, tokens.AccessToken
}

func (e *testEnv) adminToken(t *testing.T) string {
	token, err := util.GenerateAccessToken(9999, "admin@sudays.app", string(model.RoleAdmin), testJWTSecret, time.Minute)
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
