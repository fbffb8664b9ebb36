package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/quizdesk/quiz-service/internal/errors"
	"github.com/quizdesk/quiz-service/internal/models"
)

// Validator wraps the struct validator with the domain's custom rules.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate checks s against its validate tags, converting failures into the
// shared ValidationErrors type the handlers know how to render.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.ToValidationErrors(err)
	}
	return err
}

// Custom validation functions

func ValidateQuestionType(fl validator.FieldLevel) bool {
	switch models.QuestionType(fl.Field().String()) {
	case models.MultipleChoice, models.TrueFalse:
		return true
	}
	return false
}

func ValidateDifficultyLevel(fl validator.FieldLevel) bool {
	switch models.DifficultyLevel(fl.Field().String()) {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return true
	}
	return false
}

func ValidateQuizStatus(fl validator.FieldLevel) bool {
	switch models.QuizStatus(fl.Field().String()) {
	case models.QuizDraft, models.QuizActive, models.QuizInactive:
		return true
	}
	return false
}

func ValidateAccessPolicy(fl validator.FieldLevel) bool {
	switch models.AccessPolicy(fl.Field().String()) {
	case models.AccessOpen, models.AccessRestricted:
		return true
	}
	return false
}

func ValidateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleUser, models.RoleAdmin:
		return true
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", ValidateQuestionType)
	validate.RegisterValidation("difficulty_level", ValidateDifficultyLevel)
	validate.RegisterValidation("quiz_status", ValidateQuizStatus)
	validate.RegisterValidation("access_policy", ValidateAccessPolicy)
	validate.RegisterValidation("user_role", ValidateUserRole)

	// Report field names from json tags for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
