package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type enrollmentService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
}

func NewEnrollmentService(repo repositories.Repository, logger utils.Logger, validator *utils.Validator) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// EnrollUsers grants the listed users access to a quiz. Already-enrolled
// users are skipped, not errors, so re-running an import is safe. Enrollment
// only grants access; no attempt rows are created until a user starts.
func (s *enrollmentService) EnrollUsers(ctx context.Context, quizID, actorID string, req *EnrollUsersRequest) (*EnrollResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if err := s.requireOwner(quiz, actorID, "enroll users in"); err != nil {
		return nil, err
	}

	// Unknown user IDs fail the whole request; a typo'd roster should not
	// half-apply
	users, err := s.repo.User().GetByIDs(ctx, req.UserIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up users: %w", err)
	}
	if len(users) != len(dedupe(req.UserIDs)) {
		return nil, ErrUserNotFound
	}

	existing, err := s.repo.Enrollment().EnrolledUserIDs(ctx, quizID, req.UserIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing enrollments: %w", err)
	}
	existingSet := make(map[string]bool, len(existing))
	for _, id := range existing {
		existingSet[id] = true
	}

	result := &EnrollResult{QuizID: quizID, Enrolled: []string{}, Skipped: []string{}}
	var toCreate []*models.Enrollment
	for _, userID := range dedupe(req.UserIDs) {
		if existingSet[userID] {
			result.Skipped = append(result.Skipped, userID)
			continue
		}
		toCreate = append(toCreate, &models.Enrollment{QuizID: quizID, UserID: userID})
		result.Enrolled = append(result.Enrolled, userID)
	}

	if len(toCreate) > 0 {
		if err := s.repo.Enrollment().CreateBatch(ctx, toCreate); err != nil {
			return nil, fmt.Errorf("failed to create enrollments: %w", err)
		}
	}

	s.logger.Info("Users enrolled",
		"quiz_id", quizID,
		"enrolled", len(result.Enrolled),
		"skipped", len(result.Skipped))
	return result, nil
}

func (s *enrollmentService) ListEnrollees(ctx context.Context, quizID, actorID string) ([]EnrolleeRow, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if err := s.requireOwner(quiz, actorID, "view the roster of"); err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment().GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	userIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		userIDs = append(userIDs, e.UserID)
	}
	stats, err := s.repo.Attempt().GetEnrolleeStats(ctx, quizID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attempt stats: %w", err)
	}

	rows := make([]EnrolleeRow, 0, len(enrollments))
	for _, e := range enrollments {
		row := EnrolleeRow{
			UserID: e.UserID,
			Name:   e.User.Name,
			Email:  e.User.Email,
		}
		if st, ok := stats[e.UserID]; ok {
			row.AttemptCount = st.AttemptCount
			row.SubmittedCount = st.SubmittedCount
			row.BestScore = st.BestScore
			row.HasActiveAttempt = st.HasActiveAttempt
			if st.BestScore != nil && st.LastAttempt != nil {
				pct := DisplayPercentage(*st.BestScore, st.LastAttempt.TotalPoints)
				row.BestPercentage = &pct
			}
			if st.LastAttempt != nil {
				started := st.LastAttempt.StartedAt
				row.LastAttemptAt = &started
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

func (s *enrollmentService) requireOwner(quiz *models.Quiz, actorID, action string) error {
	if quiz.CreatedBy != actorID {
		return NewPermissionError(actorID, quiz.ID, "quiz", action, "not the quiz owner")
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
