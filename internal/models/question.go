package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TrueFalse      QuestionType = "TRUE_FALSE"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "EASY"
	DifficultyMedium DifficultyLevel = "MEDIUM"
	DifficultyHard   DifficultyLevel = "HARD"
)

var ErrInvalidOptions = errors.New("question options are not a JSON array of strings")

// Question is immutable once referenced by a quiz. Options are stored in the
// canonical encoding: a JSONB array of option strings, with CorrectAnswer
// holding the zero-based index of the correct option as a string. The
// encoding is enforced at ingest by the validator; readers still decode
// defensively because legacy rows may predate the canonicalization.
type Question struct {
	ID            string          `json:"id" gorm:"primaryKey;size:36"`
	Title         string          `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Content       string          `json:"content" gorm:"type:text;not null" validate:"required"`
	Type          QuestionType    `json:"type" gorm:"not null;index" validate:"required,question_type"`
	Options       datatypes.JSON  `json:"options" gorm:"type:jsonb;not null"`
	CorrectAnswer string          `json:"correct_answer" gorm:"not null;size:10" validate:"required"`
	Explanation   string          `json:"explanation" gorm:"type:text"`
	Difficulty    DifficultyLevel `json:"difficulty" gorm:"not null;default:MEDIUM" validate:"omitempty,difficulty_level"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// DecodeOptions parses the stored option payload into an ordered slice.
// Payloads that are not a JSON array of strings yield ErrInvalidOptions;
// callers drop the owning question rather than failing the whole quiz.
func (q *Question) DecodeOptions() ([]string, error) {
	if len(q.Options) == 0 {
		return nil, ErrInvalidOptions
	}

	var options []string
	if err := json.Unmarshal(q.Options, &options); err == nil {
		return options, nil
	}

	// Legacy rows sometimes hold a doubly-encoded payload: a JSON string
	// whose contents are themselves the JSON array.
	var raw string
	if err := json.Unmarshal(q.Options, &raw); err != nil {
		return nil, ErrInvalidOptions
	}
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, ErrInvalidOptions
	}
	return options, nil
}
