package repositories

import (
	"context"
	"time"

	"github.com/quizdesk/quiz-service/internal/models"
)

// AttemptRepository owns the attempt state machine's persistence. The two
// write paths with ordering requirements are Create (guarded by the partial
// unique index on active attempts) and MarkSubmitted (a conditional update
// so concurrent submits score exactly once).
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, id string) (*models.QuizAttempt, error)
	GetByIDWithAnswers(ctx context.Context, id string) (*models.QuizAttempt, error)

	// GetActiveAttempt returns the IN_PROGRESS attempt for (quiz, user),
	// or a not-found error when none exists. The partial unique index
	// guarantees at most one.
	GetActiveAttempt(ctx context.Context, quizID, userID string) (*models.QuizAttempt, error)

	// CountSubmitted counts terminal attempts only; open attempts never
	// consume an attempt slot.
	CountSubmitted(ctx context.Context, quizID, userID string) (int64, error)

	ListByQuizAndUser(ctx context.Context, quizID, userID string) ([]*models.QuizAttempt, error)
	ListSubmittedByQuiz(ctx context.Context, quizID string) ([]*models.QuizAttempt, error)

	// MarkSubmitted transitions IN_PROGRESS -> SUBMITTED and records the
	// score in one conditional update. Returns false when the attempt was
	// not IN_PROGRESS, i.e. another submit won the race.
	MarkSubmitted(ctx context.Context, id string, submittedAt time.Time, score float64, timeTaken int) (bool, error)

	GetStats(ctx context.Context, quizID string) (*AttemptStats, error)
	GetEnrolleeStats(ctx context.Context, quizID string, userIDs []string) (map[string]*EnrolleeStats, error)
}

// AnswerRepository persists per-question answers; each row is an upsert
// keyed by (attempt, question), so answers to distinct questions commute.
type AnswerRepository interface {
	Upsert(ctx context.Context, answer *models.QuizAnswer) error
	GetByAttempt(ctx context.Context, attemptID string) ([]*models.QuizAnswer, error)
	GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID string) (*models.QuizAnswer, error)
}
