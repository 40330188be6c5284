package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/internal/app/controller"
	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/internal/middleware"
	"github.com/sudays/sudays-backend/pkg/logger"
)

type Router struct {
	authController         *controller.AuthController
	memberController       *controller.MemberController
	verificationController *controller.VerificationController
	diaryController        *controller.DiaryController
	authMiddleware         *middleware.AuthMiddleware
	metrics                *middleware.Metrics
	config                 *config.Config
	log                    *logger.Logger
}

func NewRouter(
	authController *controller.AuthController,
	memberController *controller.MemberController,
	verificationController *controller.VerificationController,
	diaryController *controller.DiaryController,
	authMiddleware *middleware.AuthMiddleware,
	metrics *middleware.Metrics,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		authController:         authController,
		memberController:       memberController,
		verificationController: verificationController,
		diaryController:        diaryController,
		authMiddleware:         authMiddleware,
		metrics:                metrics,
		config:                 cfg,
		log:                    log,
	}
}

// Setup builds the engine. ctx bounds background work owned by middleware.
func (r *Router) Setup(ctx context.Context) *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(r.log))
	router.Use(r.metrics.Middleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Sudays API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	auth := router.Group("/auth")
	{
		auth.POST("/signup", r.authController.Signup)
		auth.POST("/login", r.authController.Login)
		auth.POST("/refresh", r.authController.Refresh)
		auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
		auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		auth.PATCH("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
	}

	admin := router.Group("/admin")
	admin.Use(
		r.authMiddleware.Authenticate(),
		r.authMiddleware.RequireRole(model.RoleAdmin),
	)
	{
		admin.PATCH("/members/:id", r.memberController.UpdateMember)
		admin.DELETE("/members/:id", r.memberController.DeleteMember)
	}

	email := router.Group("/email")
	email.Use(middleware.RateLimit(ctx, r.config.Server.EmailRouteRPS, r.config.Server.EmailRouteBurst))
	{
		email.POST("/send-verification", r.verificationController.SendVerification)
		email.POST("/verify-code", r.verificationController.VerifyCode)
		email.GET("/verification-status/:email", r.verificationController.VerificationStatus)
	}

	diary := router.Group("/diary")
	diary.Use(r.authMiddleware.Authenticate())
	{
		diary.GET("/:date", r.diaryController.GetDiary)
		diary.POST("/", r.diaryController.SaveDiary)
		diary.GET("/image/:id", r.diaryController.GetDiaryImage)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
