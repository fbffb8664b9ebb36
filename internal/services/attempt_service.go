package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quizdesk/quiz-service/internal/events"
	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type attemptService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
	publisher events.EventPublisher
	stats     StatsService

	// injectable clock; every lifecycle decision reads the time once
	// through here so tests can pin it
	now func() time.Time
}

func NewAttemptService(
	repo repositories.Repository,
	logger utils.Logger,
	validator *utils.Validator,
	publisher events.EventPublisher,
	stats StatsService,
) AttemptService {
	return &attemptService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		stats:     stats,
		now:       time.Now,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, quizID, userID string) (*StartAttemptResult, error) {
	s.logger.Info("Starting quiz attempt", "quiz_id", quizID, "user_id", userID)

	now := s.now()

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	// Eligibility checks run in a fixed order so the user always sees the
	// most fundamental failure first
	if err := s.checkStartEligibility(ctx, quiz, userID, now); err != nil {
		return nil, err
	}

	// Resume before create: an open attempt never consumes a new slot
	if active, err := s.repo.Attempt().GetActiveAttempt(ctx, quizID, userID); err == nil {
		s.logger.Info("Resuming existing attempt", "attempt_id", active.ID, "quiz_id", quizID)
		return s.startResult(ctx, quiz, active, true), nil
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check active attempt: %w", err)
	}

	attempt := &models.QuizAttempt{
		QuizID:      quizID,
		UserID:      userID,
		Status:      models.AttemptInProgress,
		StartedAt:   now,
		TotalPoints: quiz.TotalPoints(),
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		if repositories.IsDuplicateError(err) {
			// Lost a concurrent start race; the winner's attempt is the
			// one to resume
			active, aerr := s.repo.Attempt().GetActiveAttempt(ctx, quizID, userID)
			if aerr != nil {
				return nil, fmt.Errorf("failed to resume after start race: %w", aerr)
			}
			s.logger.Info("Lost start race, resuming winner's attempt",
				"attempt_id", active.ID, "quiz_id", quizID, "user_id", userID)
			return s.startResult(ctx, quiz, active, true), nil
		}
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Quiz attempt started",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"user_id", userID,
		"total_points", attempt.TotalPoints)

	return s.startResult(ctx, quiz, attempt, false), nil
}

func (s *attemptService) GetActiveView(ctx context.Context, quizID, userID string) (*ActiveAttemptView, error) {
	attempt, err := s.repo.Attempt().GetActiveAttempt(ctx, quizID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoActiveAttempt
		}
		return nil, fmt.Errorf("failed to get active attempt: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	questions, err := s.buildQuestionViews(quiz)
	if err != nil {
		return nil, err
	}

	answers, err := s.repo.Answer().GetByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get saved answers: %w", err)
	}
	saved := make(map[string]string, len(answers))
	for _, a := range answers {
		saved[a.QuestionID] = a.UserAnswer
	}

	return &ActiveAttemptView{
		AttemptID:          attempt.ID,
		QuizID:             quiz.ID,
		QuizTitle:          quiz.Title,
		TimeLimit:          quiz.TimeLimit,
		TimeRemaining:      s.timeRemaining(quiz, attempt),
		RandomOrder:        quiz.RandomOrder,
		ShowAnswers:        quiz.ShowAnswers,
		CheckAnswerEnabled: quiz.CheckAnswerEnabled,
		StartedAt:          attempt.StartedAt,
		TotalPoints:        attempt.TotalPoints,
		Questions:          questions,
		SavedAnswers:       saved,
	}, nil
}

func (s *attemptService) RecordAnswer(ctx context.Context, attemptID, userID string, req *RecordAnswerRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	attempt, err := s.getOwnedAttempt(ctx, attemptID, userID)
	if err != nil {
		return err
	}
	if attempt.Status != models.AttemptInProgress {
		return ErrAttemptNotActive
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, attempt.QuizID)
	if err != nil {
		return fmt.Errorf("failed to get quiz: %w", err)
	}
	if !answerableQuestion(quiz, req.QuestionID) {
		return ErrInvalidQuestion
	}

	answer := &models.QuizAnswer{
		AttemptID:  attemptID,
		QuestionID: req.QuestionID,
		UserAnswer: req.UserAnswer,
	}
	if err := s.repo.Answer().Upsert(ctx, answer); err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}

	s.logger.Debug("Answer saved",
		"attempt_id", attemptID,
		"question_id", req.QuestionID)
	return nil
}

// CheckAnswer grades a single saved answer mid-attempt. Gated by the quiz's
// check-answer flag; only answerable questions with a saved answer qualify.
func (s *attemptService) CheckAnswer(ctx context.Context, attemptID, userID, questionID string) (*CheckAnswerResult, error) {
	attempt, err := s.getOwnedAttempt(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, ErrAttemptNotActive
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if !quiz.CheckAnswerEnabled {
		return nil, ErrCheckAnswerDisabled
	}
	if !answerableQuestion(quiz, questionID) {
		return nil, ErrInvalidQuestion
	}

	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	answer, err := s.repo.Answer().GetByAttemptAndQuestion(ctx, attempt.ID, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoSavedAnswer
		}
		return nil, fmt.Errorf("failed to get saved answer: %w", err)
	}

	return &CheckAnswerResult{
		QuestionID:    questionID,
		UserAnswer:    answer.UserAnswer,
		Correct:       answer.UserAnswer == question.CorrectAnswer,
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
	}, nil
}

func (s *attemptService) Submit(ctx context.Context, attemptID, userID string, req *SubmitAttemptRequest) (*SubmitResult, error) {
	s.logger.Info("Submitting quiz attempt", "attempt_id", attemptID, "user_id", userID)

	now := s.now()

	attempt, err := s.repo.Attempt().GetByIDWithAnswers(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	// Foreign attempts read as not found; existence is not leaked
	if attempt.UserID != userID {
		return nil, ErrAttemptNotFound
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, ErrAttemptAlreadySubmitted
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	answerMap := make(map[string]string, len(attempt.Answers))
	for _, a := range attempt.Answers {
		answerMap[a.QuestionID] = a.UserAnswer
	}

	key := BuildAnswerKey(quiz.Questions)

	// The submission's answer sheet wins over incrementally saved answers.
	// Entries for questions outside the answer key (foreign or undecodable)
	// are dropped.
	final := make([]*models.QuizAnswer, 0)
	if req != nil {
		for questionID, userAnswer := range req.Answers {
			if _, scored := key[questionID]; !scored {
				continue
			}
			answerMap[questionID] = userAnswer
			final = append(final, &models.QuizAnswer{
				AttemptID:  attempt.ID,
				QuestionID: questionID,
				UserAnswer: userAnswer,
			})
		}
	}
	score := ComputeScore(key, answerMap, quiz.NegativeMarking, quiz.NegativePoints)
	timeTaken := int(now.Sub(attempt.StartedAt).Seconds())
	if timeTaken < 0 {
		timeTaken = 0
	}

	// Final-sheet writes and the conditional transition commit together.
	// Exactly one submit per attempt scores; the loser's writes roll back
	// so a submitted attempt's answers never change.
	err = s.repo.InTx(ctx, func(tx repositories.Repository) error {
		for _, answer := range final {
			if err := tx.Answer().Upsert(ctx, answer); err != nil {
				return fmt.Errorf("failed to save final answer: %w", err)
			}
		}
		ok, err := tx.Attempt().MarkSubmitted(ctx, attempt.ID, now, score, timeTaken)
		if err != nil {
			return fmt.Errorf("failed to submit attempt: %w", err)
		}
		if !ok {
			return ErrAttemptAlreadySubmitted
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAttemptAlreadySubmitted) {
			s.logger.Info("Attempt already submitted by a concurrent request",
				"attempt_id", attempt.ID)
			return nil, ErrAttemptAlreadySubmitted
		}
		return nil, err
	}

	s.logger.Info("Quiz attempt submitted",
		"attempt_id", attempt.ID,
		"quiz_id", attempt.QuizID,
		"user_id", userID,
		"score", score,
		"total_points", attempt.TotalPoints,
		"time_taken", timeTaken)

	s.stats.Invalidate(ctx, attempt.QuizID)
	s.publishSubmitted(ctx, attempt, userID, score, timeTaken, now)

	return &SubmitResult{
		AttemptID:   attempt.ID,
		QuizID:      attempt.QuizID,
		Score:       score,
		TotalPoints: attempt.TotalPoints,
		Percentage:  DisplayPercentage(score, attempt.TotalPoints),
		TimeTaken:   timeTaken,
		SubmittedAt: now,
	}, nil
}
