package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizDraft    QuizStatus = "DRAFT"
	QuizActive   QuizStatus = "ACTIVE"
	QuizInactive QuizStatus = "INACTIVE"
)

type AccessPolicy string

const (
	// AccessOpen makes the quiz available to every user with a compatible
	// role; enrollment rows are ignored.
	AccessOpen AccessPolicy = "OPEN"
	// AccessRestricted limits the quiz to explicitly enrolled users.
	AccessRestricted AccessPolicy = "RESTRICTED"
)

// StartGraceWindow is how long after StartTime an attempt may still be
// started. Matches the fixed 30-minute window communicated to takers.
const StartGraceWindow = 30 * time.Minute

type Quiz struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	Title       string          `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string         `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	TimeLimit   int             `json:"time_limit" gorm:"not null" validate:"required,min=1,max=600"` // minutes
	Difficulty  DifficultyLevel `json:"difficulty" gorm:"not null;default:MEDIUM" validate:"omitempty,difficulty_level"`
	Status      QuizStatus      `json:"status" gorm:"not null;default:DRAFT;index" validate:"omitempty,quiz_status"`

	// Scoring policy
	NegativeMarking bool    `json:"negative_marking" gorm:"not null;default:false"`
	NegativePoints  float64 `json:"negative_points" gorm:"not null;default:0.5" validate:"min=0"`

	// RandomOrder and ShowAnswers are advisory to clients;
	// CheckAnswerEnabled gates the in-attempt answer check endpoint
	RandomOrder        bool `json:"random_order" gorm:"not null;default:false"`
	ShowAnswers        bool `json:"show_answers" gorm:"not null;default:false"`
	CheckAnswerEnabled bool `json:"check_answer_enabled" gorm:"not null;default:false"`

	// nil means unlimited attempts
	MaxAttempts *int `json:"max_attempts" validate:"omitempty,min=1"`

	// Schedule window; either bound may be absent
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`

	AccessPolicy AccessPolicy `json:"access_policy" gorm:"not null;default:OPEN" validate:"omitempty,access_policy"`

	CreatedBy string    `json:"created_by" gorm:"not null;size:36;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Questions   []QuizQuestion `json:"questions" gorm:"foreignKey:QuizID"`
	Enrollments []Enrollment   `json:"enrollments" gorm:"foreignKey:QuizID"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// TotalPoints sums the per-question points. Captured onto an attempt at
// start time so later quiz edits never change past attempts.
func (q *Quiz) TotalPoints() float64 {
	var total float64
	for _, qq := range q.Questions {
		total += qq.Points
	}
	return total
}

// QuizQuestion attaches a bank question to a quiz with its weight and
// default presentation order (dense 1..N).
type QuizQuestion struct {
	ID         string  `json:"id" gorm:"primaryKey;size:36"`
	QuizID     string  `json:"quiz_id" gorm:"not null;size:36;uniqueIndex:idx_quiz_question"`
	QuestionID string  `json:"question_id" gorm:"not null;size:36;uniqueIndex:idx_quiz_question"`
	Order      int     `json:"order" gorm:"column:position;not null" validate:"min=1"`
	Points     float64 `json:"points" gorm:"not null;default:1" validate:"required,gt=0"`

	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

func (qq *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if qq.ID == "" {
		qq.ID = uuid.NewString()
	}
	return nil
}

// Enrollment grants a user access to a RESTRICTED quiz.
type Enrollment struct {
	ID     string `json:"id" gorm:"primaryKey;size:36"`
	QuizID string `json:"quiz_id" gorm:"not null;size:36;uniqueIndex:idx_quiz_user"`
	UserID string `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_quiz_user"`

	CreatedAt time.Time `json:"created_at"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

func (Enrollment) TableName() string {
	return "quiz_enrollments"
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
