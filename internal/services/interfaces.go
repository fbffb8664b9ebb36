package services

import (
	"context"
	"io"

	"github.com/quizdesk/quiz-service/internal/cache"
	"github.com/quizdesk/quiz-service/internal/events"
	"github.com/quizdesk/quiz-service/internal/repositories"
	"github.com/quizdesk/quiz-service/internal/utils"
)

// ===== SERVICE INTERFACES =====

// AttemptService drives the attempt lifecycle: start, take, submit.
type AttemptService interface {
	Start(ctx context.Context, quizID, userID string) (*StartAttemptResult, error)
	GetActiveView(ctx context.Context, quizID, userID string) (*ActiveAttemptView, error)
	RecordAnswer(ctx context.Context, attemptID, userID string, req *RecordAnswerRequest) error
	CheckAnswer(ctx context.Context, attemptID, userID, questionID string) (*CheckAnswerResult, error)
	Submit(ctx context.Context, attemptID, userID string, req *SubmitAttemptRequest) (*SubmitResult, error)
}

type QuizService interface {
	ListAvailable(ctx context.Context, userID string) ([]QuizSummary, error)
	GetSummary(ctx context.Context, quizID string) (*QuizSummary, error)
	GetAttemptHistory(ctx context.Context, quizID, userID string) (*AttemptHistory, error)
}

type EnrollmentService interface {
	EnrollUsers(ctx context.Context, quizID, actorID string, req *EnrollUsersRequest) (*EnrollResult, error)
	ListEnrollees(ctx context.Context, quizID, actorID string) ([]EnrolleeRow, error)
}

type StatsService interface {
	GetQuizStats(ctx context.Context, quizID string) (*QuizStats, error)
	Invalidate(ctx context.Context, quizID string)
}

// ExportService produces downloadable result sheets for a quiz.
type ExportService interface {
	ExportResultsCSV(ctx context.Context, quizID, actorID string, w io.Writer) error
	ExportResultsXLSX(ctx context.Context, quizID, actorID string, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type Manager struct {
	Attempt    AttemptService
	Quiz       QuizService
	Enrollment EnrollmentService
	Stats      StatsService
	Export     ExportService
}

func NewManager(
	repo repositories.Repository,
	logger utils.Logger,
	validator *utils.Validator,
	publisher events.EventPublisher,
	statsStore cache.Store,
) *Manager {
	stats := NewStatsService(repo, statsStore, logger)
	return &Manager{
		Attempt:    NewAttemptService(repo, logger, validator, publisher, stats),
		Quiz:       NewQuizService(repo, logger, validator),
		Enrollment: NewEnrollmentService(repo, logger, validator),
		Stats:      stats,
		Export:     NewExportService(repo, logger),
	}
}
