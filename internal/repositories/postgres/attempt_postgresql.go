package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDWithAnswers(ctx context.Context, id string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Preload("Answers").
		First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetActiveAttempt(ctx context.Context, quizID, userID string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ? AND status = ?", quizID, userID, models.AttemptInProgress).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) CountSubmitted(ctx context.Context, quizID, userID string) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND user_id = ? AND status = ?", quizID, userID, models.AttemptSubmitted).
		Count(&count).Error
	return count, err
}

func (a *AttemptPostgreSQL) ListByQuizAndUser(ctx context.Context, quizID, userID string) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("created_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) ListSubmittedByQuiz(ctx context.Context, quizID string) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Where("quiz_id = ? AND status = ?", quizID, models.AttemptSubmitted).
		Order("submitted_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

// MarkSubmitted guards the terminal transition with a status predicate so
// that of two racing submits exactly one mutates the row.
func (a *AttemptPostgreSQL) MarkSubmitted(ctx context.Context, id string, submittedAt time.Time, score float64, timeTaken int) (bool, error) {
	result := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("id = ? AND status = ?", id, models.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":       models.AttemptSubmitted,
			"submitted_at": submittedAt,
			"score":        score,
			"time_taken":   timeTaken,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (a *AttemptPostgreSQL) GetStats(ctx context.Context, quizID string) (*repositories.AttemptStats, error) {
	stats := &repositories.AttemptStats{QuizID: quizID}

	var total, inProgress int64
	if err := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ?", quizID).
		Count(&total).Error; err != nil {
		return nil, err
	}
	if err := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND status = ?", quizID, models.AttemptInProgress).
		Count(&inProgress).Error; err != nil {
		return nil, err
	}

	var agg struct {
		Submitted    int64
		AvgScore     *float64
		BestScore    *float64
		AvgTimeTaken *float64
	}
	if err := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND status = ?", quizID, models.AttemptSubmitted).
		Select("COUNT(*) AS submitted, AVG(score) AS avg_score, MAX(score) AS best_score, AVG(time_taken) AS avg_time_taken").
		Scan(&agg).Error; err != nil {
		return nil, err
	}

	stats.TotalAttempts = int(total)
	stats.InProgressCount = int(inProgress)
	stats.SubmittedAttempts = int(agg.Submitted)
	if agg.AvgScore != nil {
		stats.AverageScore = *agg.AvgScore
	}
	if agg.BestScore != nil {
		stats.BestScore = *agg.BestScore
	}
	if agg.AvgTimeTaken != nil {
		stats.AverageTimeTaken = int(*agg.AvgTimeTaken)
	}
	return stats, nil
}

func (a *AttemptPostgreSQL) GetEnrolleeStats(ctx context.Context, quizID string, userIDs []string) (map[string]*repositories.EnrolleeStats, error) {
	stats := make(map[string]*repositories.EnrolleeStats, len(userIDs))
	if len(userIDs) == 0 {
		return stats, nil
	}

	var attempts []*models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id IN ?", quizID, userIDs).
		Order("created_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}

	for _, attempt := range attempts {
		entry, ok := stats[attempt.UserID]
		if !ok {
			entry = &repositories.EnrolleeStats{}
			stats[attempt.UserID] = entry
		}
		entry.AttemptCount++
		if entry.LastAttempt == nil {
			entry.LastAttempt = attempt
		}
		switch attempt.Status {
		case models.AttemptSubmitted:
			entry.SubmittedCount++
			if attempt.Score != nil && (entry.BestScore == nil || *attempt.Score > *entry.BestScore) {
				entry.BestScore = attempt.Score
			}
		case models.AttemptInProgress:
			entry.HasActiveAttempt = true
		}
	}
	return stats, nil
}
