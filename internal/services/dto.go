package services

import (
	"time"

	"github.com/quizdesk/quiz-service/internal/models"
)

// ===== REQUEST DTOS =====

// RecordAnswerRequest saves one answer. QuestionID membership is checked
// against the quiz, not its format.
type RecordAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required,max=36"`
	UserAnswer string `json:"user_answer" validate:"max=500"`
}

// SubmitAttemptRequest carries the taker's final answer sheet. Answers here
// win over previously saved ones; both may be partial.
type SubmitAttemptRequest struct {
	Answers map[string]string `json:"answers" validate:"omitempty,max=200"`
}

type EnrollUsersRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,max=500,dive,uuid"`
}

// ===== RESPONSE DTOS =====

// StartAttemptResult reports a freshly created or resumed attempt. Resumed is
// true when an in-progress attempt already existed for the quiz.
type StartAttemptResult struct {
	AttemptID   string    `json:"attempt_id"`
	QuizID      string    `json:"quiz_id"`
	StartedAt   time.Time `json:"started_at"`
	TotalPoints float64   `json:"total_points"`
	Resumed     bool      `json:"resumed"`
}

// QuestionView is a question as shown to a quiz taker: no correct answer,
// options decoded into a plain array.
type QuestionView struct {
	ID      string              `json:"id"`
	Title   string              `json:"title"`
	Content string              `json:"content"`
	Type    models.QuestionType `json:"type"`
	Options []string            `json:"options"`
	Points  float64             `json:"points"`
	Order   int                 `json:"order"`
}

// ActiveAttemptView is everything the taking screen needs to render: the
// questions, the saved answers so far, and the server-computed remaining time.
type ActiveAttemptView struct {
	AttemptID          string            `json:"attempt_id"`
	QuizID             string            `json:"quiz_id"`
	QuizTitle          string            `json:"quiz_title"`
	TimeLimit          int               `json:"time_limit"`
	TimeRemaining      int               `json:"time_remaining"`
	RandomOrder        bool              `json:"random_order"`
	ShowAnswers        bool              `json:"show_answers"`
	CheckAnswerEnabled bool              `json:"check_answer_enabled"`
	StartedAt          time.Time         `json:"started_at"`
	TotalPoints        float64           `json:"total_points"`
	Questions          []QuestionView    `json:"questions"`
	SavedAnswers       map[string]string `json:"saved_answers"`
}

type SubmitResult struct {
	AttemptID   string    `json:"attempt_id"`
	QuizID      string    `json:"quiz_id"`
	Score       float64   `json:"score"`
	TotalPoints float64   `json:"total_points"`
	Percentage  float64   `json:"percentage"`
	TimeTaken   int       `json:"time_taken"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// CheckAnswerResult is the immediate feedback for a single question while an
// attempt is in progress. Only returned when the quiz enables answer checking.
type CheckAnswerResult struct {
	QuestionID    string `json:"question_id"`
	UserAnswer    string `json:"user_answer"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
}

type QuizSummary struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Status          models.QuizStatus   `json:"status"`
	AccessPolicy    models.AccessPolicy `json:"access_policy"`
	TimeLimit       int                 `json:"time_limit"`
	NegativeMarking bool                `json:"negative_marking"`
	MaxAttempts     *int                `json:"max_attempts"`
	StartTime       *time.Time          `json:"start_time"`
	EndTime         *time.Time          `json:"end_time"`
	QuestionCount   int                 `json:"question_count"`
	TotalPoints     float64             `json:"total_points"`

	// Per-caller usage, populated by the catalogue listing
	UsedAttempts     int  `json:"used_attempts"`
	HasActiveAttempt bool `json:"has_active_attempt"`
	CanTake          bool `json:"can_take"`
}

// AttemptSummary is one row of a user's attempt history for a quiz.
type AttemptSummary struct {
	AttemptID   string               `json:"attempt_id"`
	Status      models.AttemptStatus `json:"status"`
	Score       *float64             `json:"score"`
	TotalPoints float64              `json:"total_points"`
	Percentage  *float64             `json:"percentage"`
	TimeTaken   *int                 `json:"time_taken"`
	StartedAt   time.Time            `json:"started_at"`
	SubmittedAt *time.Time           `json:"submitted_at"`
}

type AttemptHistory struct {
	QuizID       string           `json:"quiz_id"`
	QuizTitle    string           `json:"quiz_title"`
	MaxAttempts  *int             `json:"max_attempts"`
	UsedAttempts int              `json:"used_attempts"`
	Attempts     []AttemptSummary `json:"attempts"`
}

type EnrollResult struct {
	QuizID   string   `json:"quiz_id"`
	Enrolled []string `json:"enrolled"`
	Skipped  []string `json:"skipped"`
}

// EnrolleeRow is a student as shown on the instructor's quiz roster.
type EnrolleeRow struct {
	UserID           string     `json:"user_id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	AttemptCount     int        `json:"attempt_count"`
	SubmittedCount   int        `json:"submitted_count"`
	BestScore        *float64   `json:"best_score"`
	BestPercentage   *float64   `json:"best_percentage"`
	LastAttemptAt    *time.Time `json:"last_attempt_at"`
	HasActiveAttempt bool       `json:"has_active_attempt"`
}

type QuizStats struct {
	QuizID            string    `json:"quiz_id"`
	TotalAttempts     int64     `json:"total_attempts"`
	SubmittedAttempts int64     `json:"submitted_attempts"`
	InProgressCount   int64     `json:"in_progress_count"`
	AverageScore      *float64  `json:"average_score"`
	BestScore         *float64  `json:"best_score"`
	AverageTimeTaken  *float64  `json:"average_time_taken"`
	ComputedAt        time.Time `json:"computed_at"`
}
