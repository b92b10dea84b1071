package repository

import (
	"context"

	"polls-server/internal/domain"
)

// QuestionRepository exposes persistence operations for Question records.
// Visibility rules (published vs future) live in the domain layer; the
// repository stores and returns every question it knows about.
type QuestionRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, question *domain.Question) (int64, error)
	Update(ctx context.Context, question *domain.Question) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Question, error)
	List(ctx context.Context) ([]domain.Question, error)
}

// ChoiceRepository manages the votable choices attached to questions.
type ChoiceRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, choice *domain.Choice) (int64, error)
	ListByQuestion(ctx context.Context, questionID int64) ([]domain.Choice, error)
	AddVote(ctx context.Context, questionID, choiceID int64) error
}
