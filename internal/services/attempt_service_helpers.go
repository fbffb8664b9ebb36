package services

import (
	"context"
	"fmt"
	"time"

	"github.com/quizdesk/quiz-service/internal/events"
	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"

	"github.com/google/uuid"
)

// ===== ELIGIBILITY =====

// checkStartEligibility runs the start preconditions in their fixed order:
// status, schedule window, enrollment, attempt limit.
func (s *attemptService) checkStartEligibility(ctx context.Context, quiz *models.Quiz, userID string, now time.Time) error {
	if quiz.Status != models.QuizActive {
		return ErrQuizNotAvailable
	}

	if quiz.StartTime != nil {
		if now.Before(*quiz.StartTime) {
			return ErrQuizNotYetOpen
		}
		if now.After(quiz.StartTime.Add(models.StartGraceWindow)) {
			return ErrStartWindowExpired
		}
	}
	if quiz.EndTime != nil && now.After(*quiz.EndTime) {
		return ErrQuizExpired
	}

	if quiz.AccessPolicy == models.AccessRestricted {
		enrolled, err := s.repo.Enrollment().IsEnrolled(ctx, quiz.ID, userID)
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if !enrolled {
			return ErrNotEnrolled
		}
	}

	if quiz.MaxAttempts != nil {
		used, err := s.repo.Attempt().CountSubmitted(ctx, quiz.ID, userID)
		if err != nil {
			return fmt.Errorf("failed to count attempts: %w", err)
		}
		if int(used) >= *quiz.MaxAttempts {
			return &AttemptLimitError{Used: int(used), Limit: *quiz.MaxAttempts}
		}
	}

	return nil
}

// ===== VIEW BUILDING =====

// buildQuestionViews decodes each attached question for display. Questions
// with undecodable options are dropped rather than shown broken; a quiz
// where every question is broken is a hard failure.
func (s *attemptService) buildQuestionViews(quiz *models.Quiz) ([]QuestionView, error) {
	views := make([]QuestionView, 0, len(quiz.Questions))
	for _, link := range quiz.Questions {
		opts, err := link.Question.DecodeOptions()
		if err != nil {
			s.logger.Warn("Dropping question with undecodable options",
				"quiz_id", quiz.ID,
				"question_id", link.QuestionID,
				"error", err)
			continue
		}
		views = append(views, QuestionView{
			ID:      link.QuestionID,
			Title:   link.Question.Title,
			Content: link.Question.Content,
			Type:    link.Question.Type,
			Options: opts,
			Points:  link.Points,
			Order:   link.Order,
		})
	}
	if len(views) == 0 {
		return nil, ErrNoValidQuestions
	}
	return views, nil
}

// timeRemaining recomputes the countdown server-side from the frozen start
// time. Never negative; an overrun attempt shows 0 and the client is
// expected to submit.
func (s *attemptService) timeRemaining(quiz *models.Quiz, attempt *models.QuizAttempt) int {
	elapsed := int(s.now().Sub(attempt.StartedAt).Seconds())
	remaining := quiz.TimeLimit*60 - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *attemptService) startResult(ctx context.Context, quiz *models.Quiz, attempt *models.QuizAttempt, resumed bool) *StartAttemptResult {
	s.publishStarted(ctx, quiz, attempt, resumed)
	return &StartAttemptResult{
		AttemptID:   attempt.ID,
		QuizID:      attempt.QuizID,
		StartedAt:   attempt.StartedAt,
		TotalPoints: attempt.TotalPoints,
		Resumed:     resumed,
	}
}

// ===== OWNERSHIP =====

// getOwnedAttempt loads an attempt and checks the caller owns it. Foreign
// attempts read as not found so attempt IDs are not probeable.
func (s *attemptService) getOwnedAttempt(ctx context.Context, attemptID, userID string) (*models.QuizAttempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}

// answerableQuestion reports whether the question belongs to the quiz AND
// decodes cleanly. A question dropped from the view (and from the answer
// key) is not answerable, so broken questions cannot collect answers.
func answerableQuestion(quiz *models.Quiz, questionID string) bool {
	for _, link := range quiz.Questions {
		if link.QuestionID != questionID {
			continue
		}
		_, err := link.Question.DecodeOptions()
		return err == nil
	}
	return false
}

// ===== EVENTS =====

// Event publishing is best-effort; a broker outage never fails the user
// operation.

func (s *attemptService) publishStarted(ctx context.Context, quiz *models.Quiz, attempt *models.QuizAttempt, resumed bool) {
	if s.publisher == nil {
		return
	}
	event := &events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAttemptStarted,
		Timestamp: s.now(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data: events.AttemptStartedEvent{
			AttemptID: attempt.ID,
			QuizID:    attempt.QuizID,
			QuizTitle: quiz.Title,
			UserID:    attempt.UserID,
			StartedAt: attempt.StartedAt,
			TimeLimit: quiz.TimeLimit,
			Resumed:   resumed,
		},
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish attempt started event",
			"attempt_id", attempt.ID, "error", err)
	}
}

func (s *attemptService) publishSubmitted(ctx context.Context, attempt *models.QuizAttempt, userID string, score float64, timeTaken int, submittedAt time.Time) {
	if s.publisher == nil {
		return
	}
	event := &events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAttemptSubmitted,
		Timestamp: s.now(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data: events.AttemptSubmittedEvent{
			AttemptID:   attempt.ID,
			QuizID:      attempt.QuizID,
			UserID:      userID,
			Score:       score,
			TotalPoints: attempt.TotalPoints,
			TimeTaken:   timeTaken,
			SubmittedAt: submittedAt,
		},
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish attempt submitted event",
			"attempt_id", attempt.ID, "error", err)
	}
}
