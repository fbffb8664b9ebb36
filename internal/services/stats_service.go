package services

import (
	"context"
	"fmt"
	"time"

	"github.com/quizdesk/quiz-service/internal/cache"
	"github.com/quizdesk/quiz-service/internal/repositories"
	"github.com/quizdesk/quiz-service/internal/utils"
)

// statsService serves dashboard aggregates through a read-through cache.
// Entries live at most cache.StatsFreshness; a submit invalidates eagerly so
// fresh results show up immediately.
type statsService struct {
	repo   repositories.Repository
	store  cache.Store
	logger utils.Logger
}

func NewStatsService(repo repositories.Repository, store cache.Store, logger utils.Logger) StatsService {
	return &statsService{
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

func (s *statsService) GetQuizStats(ctx context.Context, quizID string) (*QuizStats, error) {
	key := cache.QuizStatsKey(quizID)

	if s.store != nil {
		var cached QuizStats
		hit, err := s.store.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("Stats cache read failed", "quiz_id", quizID, "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	raw, err := s.repo.Attempt().GetStats(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	stats := &QuizStats{
		QuizID:            quizID,
		TotalAttempts:     int64(raw.TotalAttempts),
		SubmittedAttempts: int64(raw.SubmittedAttempts),
		InProgressCount:   int64(raw.InProgressCount),
		ComputedAt:        time.Now().UTC(),
	}
	if raw.SubmittedAttempts > 0 {
		avg := raw.AverageScore
		best := raw.BestScore
		avgTime := float64(raw.AverageTimeTaken)
		stats.AverageScore = &avg
		stats.BestScore = &best
		stats.AverageTimeTaken = &avgTime
	}

	if s.store != nil {
		if err := s.store.Set(ctx, key, stats, cache.StatsFreshness); err != nil {
			s.logger.Warn("Stats cache write failed", "quiz_id", quizID, "error", err)
		}
	}
	return stats, nil
}

func (s *statsService) Invalidate(ctx context.Context, quizID string) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, cache.QuizStatsKey(quizID)); err != nil {
		s.logger.Warn("Stats cache invalidation failed", "quiz_id", quizID, "error", err)
	}
}
