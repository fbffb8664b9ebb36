package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (e *EnrollmentPostgreSQL) CreateBatch(ctx context.Context, enrollments []*models.Enrollment) error {
	if len(enrollments) == 0 {
		return nil
	}
	return e.db.WithContext(ctx).Create(enrollments).Error
}

func (e *EnrollmentPostgreSQL) IsEnrolled(ctx context.Context, quizID, userID string) (bool, error) {
	var count int64
	if err := e.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *EnrollmentPostgreSQL) GetByQuiz(ctx context.Context, quizID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	if err := e.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Preload("User").
		Order("created_at ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) EnrolledUserIDs(ctx context.Context, quizID string, userIDs []string) ([]string, error) {
	var enrolled []string
	if len(userIDs) == 0 {
		return enrolled, nil
	}
	if err := e.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("quiz_id = ? AND user_id IN ?", quizID, userIDs).
		Pluck("user_id", &enrolled).Error; err != nil {
		return nil, err
	}
	return enrolled, nil
}
