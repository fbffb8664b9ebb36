package repositories

import (
	"context"

	"github.com/quizdesk/quiz-service/internal/models"
)

// QuizRepository is read-only; authoring writes happen through the admin
// surface, which owns its own repository.
type QuizRepository interface {
	GetByID(ctx context.Context, id string) (*models.Quiz, error)
	// GetByIDWithQuestions preloads QuizQuestion rows joined with bank
	// questions, ordered by position.
	GetByIDWithQuestions(ctx context.Context, id string) (*models.Quiz, error)
	// ListAvailableTo returns ACTIVE quizzes that are OPEN or that the user
	// is enrolled in.
	ListAvailableTo(ctx context.Context, userID string) ([]*models.Quiz, error)
}

type QuestionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Question, error)
}

type EnrollmentRepository interface {
	CreateBatch(ctx context.Context, enrollments []*models.Enrollment) error
	IsEnrolled(ctx context.Context, quizID, userID string) (bool, error)
	GetByQuiz(ctx context.Context, quizID string) ([]*models.Enrollment, error)
	// EnrolledUserIDs filters userIDs down to the ones already enrolled.
	EnrolledUserIDs(ctx context.Context, quizID string, userIDs []string) ([]string, error)
}

type UserRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}
