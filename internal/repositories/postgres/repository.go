package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/quizdesk/quiz-service/internal/repositories"
)

type repository struct {
	db *gorm.DB

	quiz       repositories.QuizRepository
	question   repositories.QuestionRepository
	attempt    repositories.AttemptRepository
	answer     repositories.AnswerRepository
	enrollment repositories.EnrollmentRepository
	user       repositories.UserRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:         db,
		quiz:       NewQuizPostgreSQL(db),
		question:   NewQuestionPostgreSQL(db),
		attempt:    NewAttemptPostgreSQL(db),
		answer:     NewAnswerPostgreSQL(db),
		enrollment: NewEnrollmentPostgreSQL(db),
		user:       NewUserPostgreSQL(db),
	}
}

func (r *repository) Quiz() repositories.QuizRepository              { return r.quiz }
func (r *repository) Question() repositories.QuestionRepository      { return r.question }
func (r *repository) Attempt() repositories.AttemptRepository        { return r.attempt }
func (r *repository) Answer() repositories.AnswerRepository          { return r.answer }
func (r *repository) Enrollment() repositories.EnrollmentRepository  { return r.enrollment }
func (r *repository) User() repositories.UserRepository              { return r.user }

func (r *repository) InTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
