package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/quizdesk/quiz-service/internal/models"
)

// Repository aggregates the per-entity repositories behind a single handle.
// InTx runs fn against a repository bound to one transaction; the
// transaction commits when fn returns nil and rolls back otherwise.
type Repository interface {
	Quiz() QuizRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
	Answer() AnswerRepository
	Enrollment() EnrollmentRepository
	User() UserRepository

	InTx(ctx context.Context, fn func(Repository) error) error
}

// IsNotFoundError reports whether err is the store's "no rows" condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a uniqueness violation, e.g. the
// partial unique index on active attempts losing a concurrent start race.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// ===== SHARED STATISTICS STRUCTS =====

// AttemptStats aggregates terminal attempt data for one quiz. Served to
// dashboards through the read-through cache, never consulted by the core.
type AttemptStats struct {
	QuizID            string  `json:"quiz_id"`
	TotalAttempts     int     `json:"total_attempts"`
	SubmittedAttempts int     `json:"submitted_attempts"`
	InProgressCount   int     `json:"in_progress_count"`
	AverageScore      float64 `json:"average_score"`
	BestScore         float64 `json:"best_score"`
	AverageTimeTaken  int     `json:"average_time_taken"`
}

// EnrolleeStats carries per-user attempt aggregates for the admin roster.
type EnrolleeStats struct {
	User             models.User         `json:"user"`
	AttemptCount     int                 `json:"attempt_count"`
	SubmittedCount   int                 `json:"submitted_count"`
	BestScore        *float64            `json:"best_score"`
	LastAttempt      *models.QuizAttempt `json:"last_attempt"`
	HasActiveAttempt bool                `json:"has_active_attempt"`
}
