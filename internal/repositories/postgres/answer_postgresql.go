package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

// Upsert writes the answer keyed by (attempt_id, question_id); a repeat
// answer to the same question overwrites the previous value.
func (a *AnswerPostgreSQL) Upsert(ctx context.Context, answer *models.QuizAnswer) error {
	return a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_answer", "updated_at"}),
		}).
		Create(answer).Error
}

func (a *AnswerPostgreSQL) GetByAttempt(ctx context.Context, attemptID string) ([]*models.QuizAnswer, error) {
	var answers []*models.QuizAnswer
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (a *AnswerPostgreSQL) GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID string) (*models.QuizAnswer, error) {
	var answer models.QuizAnswer
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&answer).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}
