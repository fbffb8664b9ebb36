package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptSubmitted  AttemptStatus = "SUBMITTED"
)

// QuizAttempt is one user's pass at a quiz. At most one IN_PROGRESS row may
// exist per (quiz, user); the partial unique index below is what closes the
// check-then-create race between concurrent start requests. Abandoned
// attempts stay IN_PROGRESS until resumed; only SUBMITTED is terminal.
type QuizAttempt struct {
	ID     string        `json:"id" gorm:"primaryKey;size:36"`
	QuizID string        `json:"quiz_id" gorm:"not null;size:36;index:idx_attempt_quiz_user"`
	UserID string        `json:"user_id" gorm:"not null;size:36;index:idx_attempt_quiz_user"`
	Status AttemptStatus `json:"status" gorm:"not null;default:IN_PROGRESS;index"`

	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	SubmittedAt *time.Time `json:"submitted_at"`

	// TotalPoints is frozen at start; Score stays nil until submission and
	// keeps its sign when negative marking drives it below zero.
	TotalPoints float64  `json:"total_points" gorm:"not null;default:0"`
	Score       *float64 `json:"score"`
	TimeTaken   *int     `json:"time_taken"` // seconds

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Quiz    Quiz         `json:"quiz" gorm:"foreignKey:QuizID"`
	Answers []QuizAnswer `json:"answers" gorm:"foreignKey:AttemptID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// ActiveAttemptIndex is created alongside AutoMigrate; gorm tags cannot
// express a partial unique index.
const ActiveAttemptIndex = `CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_attempt
ON quiz_attempts (quiz_id, user_id) WHERE status = 'IN_PROGRESS'`

// QuizAnswer is the saved answer for one question of one attempt. UserAnswer
// holds the zero-based option index as a string, matching the question's
// CorrectAnswer encoding. Mutable only while the attempt is IN_PROGRESS.
type QuizAnswer struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	AttemptID  string `json:"attempt_id" gorm:"not null;size:36;uniqueIndex:idx_attempt_question"`
	QuestionID string `json:"question_id" gorm:"not null;size:36;uniqueIndex:idx_attempt_question"`
	UserAnswer string `json:"user_answer" gorm:"not null;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}

func (a *QuizAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
