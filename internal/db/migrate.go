package db

import (
	"github.com/sudays/sudays-backend/internal/app/model"
	"github.com/sudays/sudays-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the application
func Models() []interface{} {
	return []interface{}{
		&model.Member{},
		&model.EmailVerification{},
		&model.Diary{},
		&model.DiaryImage{},
	}
}

// Migrate runs database migrations
func Migrate(database *gorm.DB, log *logger.Logger) error {
	log.Info("Running database migrations...")

	models := Models()
	if err := database.AutoMigrate(models...); err != nil {
		log.Error("Failed to run migrations", err)
		return err
	}

	log.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
