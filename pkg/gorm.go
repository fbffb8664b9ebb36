package pkg

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quizdesk/quiz-service/internal/config"
	"github.com/quizdesk/quiz-service/internal/models"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// The attempt service relies on gorm.ErrDuplicatedKey to detect a
		// lost start-attempt race.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates the schema, including the partial unique index that
// enforces at most one IN_PROGRESS attempt per (quiz, user).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.Enrollment{},
		&models.QuizAttempt{},
		&models.QuizAnswer{},
	); err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	if err := db.Exec(models.ActiveAttemptIndex).Error; err != nil {
		return fmt.Errorf("failed to create active attempt index: %w", err)
	}

	return nil
}
