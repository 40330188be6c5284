package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/internal/app/controller"
	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/internal/app/repository"
	"github.com/sudays/sudays-backend/internal/app/service"
	"github.com/sudays/sudays-backend/internal/db"
	"github.com/sudays/sudays-backend/internal/middleware"
	"github.com/sudays/sudays-backend/internal/router"
	"github.com/sudays/sudays-backend/internal/storage"
	"github.com/sudays/sudays-backend/pkg/logger"
	"github.com/sudays/sudays-backend/pkg/redis"
	"github.com/sudays/sudays-backend/pkg/util"
	"gorm.io/gorm"
)

const journeyPassword = "Journey1!"

type mailbox struct {
	mu     sync.Mutex
	bodies map[string]string
}

func (m *mailbox) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies[to] = htmlBody
	return nil
}

func (m *mailbox) body(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bodies[to]
}

type TestServer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	Mailbox      *mailbox
	Verification *controller.VerificationController
}

func setupIntegrationTest(t *testing.T) *TestServer {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode, EmailRouteRPS: 100, EmailRouteBurst: 100},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
		JWT: config.JWTConfig{
			Secret:             "integration-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Email: config.EmailConfig{
			Provider:           "console",
			CodeLength:         6,
			CodeExpireMinutes:  10,
			MaxAttempts:        3,
			RateLimitMinutes:   20,
			EnableRateLimiting: true,
			Template:           config.EmailTemplate{Subject: "[Sudays] 이메일 인증코드"},
		},
		Diary: config.DiaryConfig{MaxImages: 5, MaxImageBytes: 1024 * 1024},
	}

	log := logger.Nop()
	blobs, err := storage.NewLocalStorage(t.TempDir(), log)
	require.NoError(t, err)
	box := &mailbox{bodies: map[string]string{}}

	// Setup repositories
	memberRepo := repository.NewMemberRepository(testDB, log)
	verificationRepo := repository.NewEmailVerificationRepository(testDB, log)

	// Setup services
	verificationService := service.NewVerificationService(testDB, verificationRepo, box, cfg.Email, log)
	authService := service.NewAuthService(testDB, memberRepo, verificationRepo, verificationService,
		redis.NewTokenBlacklist(client, log), cfg.JWT, log)
	diaryService := service.NewDiaryService(testDB,
		repository.NewDiaryRepository(testDB, log),
		repository.NewDiaryImageRepository(testDB, log),
		blobs, cfg.Diary, log)

	metrics := middleware.NewMetrics(prometheus.NewRegistry())
	verificationController := controller.NewVerificationController(verificationService, metrics)

	r := router.NewRouter(
		controller.NewAuthController(authService, cfg.JWT, false),
		controller.NewMemberController(authService),
		verificationController,
		controller.NewDiaryController(diaryService),
		middleware.NewAuthMiddleware(authService),
		metrics,
		cfg,
		log,
	)

	return &TestServer{
		Router:       r.Setup(ctx),
		DB:           testDB,
		Mailbox:      box,
		Verification: verificationController,
	}
}

func (ts *TestServer) request(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestCompleteMemberJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	const email = "writer@example.com"

	// 1. Request and confirm an email verification code
	t.Log("Step 1: Verify email")
	w, _ := ts.request(t, http.MethodPost, "/email/send-verification", gin.H{"email": email}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ts.Verification.Wait()

	var pending model.EmailVerification
	require.NoError(t, ts.DB.Where("email = ?", email).First(&pending).Error)
	assert.Contains(t, ts.Mailbox.body(email), pending.Code)

	w, _ = ts.request(t, http.MethodPost, "/email/verify-code", gin.H{"email": email, "code": pending.Code}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 2. Sign up
	t.Log("Step 2: Sign up")
	w, resp := ts.request(t, http.MethodPost, "/auth/signup", gin.H{
		"email":    email,
		"password": journeyPassword,
		"nickname": "writer",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	memberID := resp["member"].(map[string]interface{})["id"].(float64)

	// 3. Log in
	t.Log("Step 3: Log in")
	w, resp = ts.request(t, http.MethodPost, "/auth/login", gin.H{"email": email, "password": journeyPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	accessToken := resp["tokens"].(map[string]interface{})["access_token"].(string)

	// 4. Write a diary with one image
	t.Log("Step 4: Save diary")
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	require.NoError(t, mw.WriteField("date", "20240315"))
	require.NoError(t, mw.WriteField("content", "봄이 왔다"))
	part, err := mw.CreateFormFile("images", "spring.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/diary/", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 5. Read it back
	t.Log("Step 5: Read diary")
	w, resp = ts.request(t, http.MethodGet, "/diary/20240315", nil, accessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	diary := resp["diary"].(map[string]interface{})
	assert.Equal(t, "봄이 왔다", diary["content"])
	images := diary["images"].([]interface{})
	require.Len(t, images, 1)

	w, _ = ts.request(t, http.MethodGet, images[0].(map[string]interface{})["url"].(string), nil, accessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fake-png", w.Body.String())

	// 6. An admin promotes the member
	t.Log("Step 6: Admin update")
	hash, err := util.HashPassword(journeyPassword)
	require.NoError(t, err)
	require.NoError(t, ts.DB.Create(&model.Member{
		Email:        "admin@example.com",
		PasswordHash: hash,
		Nickname:     "admin",
		Role:         model.RoleAdmin,
		Grade:        model.GradeMember,
	}).Error)

	w, resp = ts.request(t, http.MethodPost, "/auth/login", gin.H{"email": "admin@example.com", "password": journeyPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	adminToken := resp["tokens"].(map[string]interface{})["access_token"].(string)

	w, resp = ts.request(t, http.MethodPatch, "/admin/members/"+jsonNumber(memberID), gin.H{"grade": "MEMBER"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "MEMBER", resp["member"].(map[string]interface{})["grade"])

	// 7. Log out and confirm the token no longer works
	t.Log("Step 7: Log out")
	w, _ = ts.request(t, http.MethodPost, "/auth/logout", nil, accessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = ts.request(t, http.MethodGet, "/diary/20240315", nil, accessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 8. Delivery shows up in metrics
	t.Log("Step 8: Metrics")
	w, _ = ts.request(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `sudays_verification_emails_total{result="sent"} 1`)
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
