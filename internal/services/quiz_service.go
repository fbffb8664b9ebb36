package services

import (
	"context"
	"fmt"

	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type quizService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
}

func NewQuizService(repo repositories.Repository, logger utils.Logger, validator *utils.Validator) QuizService {
	return &quizService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *quizService) ListAvailable(ctx context.Context, userID string) ([]QuizSummary, error) {
	quizzes, err := s.repo.Quiz().ListAvailableTo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	summaries := make([]QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summary := toQuizSummary(quiz)
		if err := s.fillUsage(ctx, quiz, userID, &summary); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// fillUsage annotates a catalogue entry with the caller's attempt usage so
// the list can show "2/3 attempts used" and resume buttons without extra
// round trips.
func (s *quizService) fillUsage(ctx context.Context, quiz *models.Quiz, userID string, summary *QuizSummary) error {
	used, err := s.repo.Attempt().CountSubmitted(ctx, quiz.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to count attempts: %w", err)
	}
	summary.UsedAttempts = int(used)

	_, err = s.repo.Attempt().GetActiveAttempt(ctx, quiz.ID, userID)
	switch {
	case err == nil:
		summary.HasActiveAttempt = true
	case !repositories.IsNotFoundError(err):
		return fmt.Errorf("failed to check active attempt: %w", err)
	}

	summary.CanTake = summary.HasActiveAttempt ||
		quiz.MaxAttempts == nil || summary.UsedAttempts < *quiz.MaxAttempts
	return nil
}

func (s *quizService) GetSummary(ctx context.Context, quizID string) (*QuizSummary, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	summary := toQuizSummary(quiz)
	return &summary, nil
}

func (s *quizService) GetAttemptHistory(ctx context.Context, quizID, userID string) (*AttemptHistory, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	attempts, err := s.repo.Attempt().ListByQuizAndUser(ctx, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	history := &AttemptHistory{
		QuizID:      quiz.ID,
		QuizTitle:   quiz.Title,
		MaxAttempts: quiz.MaxAttempts,
		Attempts:    make([]AttemptSummary, 0, len(attempts)),
	}
	for _, attempt := range attempts {
		summary := AttemptSummary{
			AttemptID:   attempt.ID,
			Status:      attempt.Status,
			Score:       attempt.Score,
			TotalPoints: attempt.TotalPoints,
			TimeTaken:   attempt.TimeTaken,
			StartedAt:   attempt.StartedAt,
			SubmittedAt: attempt.SubmittedAt,
		}
		if attempt.Score != nil {
			pct := DisplayPercentage(*attempt.Score, attempt.TotalPoints)
			summary.Percentage = &pct
		}
		if attempt.Status == models.AttemptSubmitted {
			history.UsedAttempts++
		}
		history.Attempts = append(history.Attempts, summary)
	}
	return history, nil
}

func toQuizSummary(quiz *models.Quiz) QuizSummary {
	summary := QuizSummary{
		ID:              quiz.ID,
		Title:           quiz.Title,
		Status:          quiz.Status,
		AccessPolicy:    quiz.AccessPolicy,
		TimeLimit:       quiz.TimeLimit,
		NegativeMarking: quiz.NegativeMarking,
		MaxAttempts:     quiz.MaxAttempts,
		StartTime:       quiz.StartTime,
		EndTime:         quiz.EndTime,
		QuestionCount:   len(quiz.Questions),
		TotalPoints:     quiz.TotalPoints(),
	}
	if quiz.Description != nil {
		summary.Description = *quiz.Description
	}
	return summary
}
