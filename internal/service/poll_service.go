package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"polls-server/internal/domain"
	"polls-server/internal/repository"
)

// PollService coordinates question level operations backed by repositories.
// Every read that faces the public enforces the visibility rule: a question
// is only served once its publication date has passed. The current time is
// taken from an injected clock so the rules stay testable.
type PollService interface {
	ListLatest(ctx context.Context) ([]domain.Question, error)
	ListAll(ctx context.Context) ([]domain.Question, error)
	GetQuestion(ctx context.Context, id int64) (*domain.Question, error)
	GetResults(ctx context.Context, id int64) (*domain.Question, error)
	CreateQuestion(ctx context.Context, text string, pubDate *time.Time) (*domain.Question, error)
	AddChoice(ctx context.Context, questionID int64, text string) (*domain.Choice, error)
	DeleteQuestion(ctx context.Context, id int64) error
	Vote(ctx context.Context, questionID, choiceID int64) (string, error)
}

type pollService struct {
	questions repository.QuestionRepository
	choices   repository.ChoiceRepository
	pageSize  int
	now       func() time.Time
}

// NewPollService builds a PollService. pageSize bounds the public index
// listing (zero or less means unbounded). A nil clock defaults to time.Now.
func NewPollService(questions repository.QuestionRepository, choices repository.ChoiceRepository, pageSize int, now func() time.Time) PollService {
	if now == nil {
		now = time.Now
	}
	return &pollService{
		questions: questions,
		choices:   choices,
		pageSize:  pageSize,
		now:       now,
	}
}

func (s *pollService) ListLatest(ctx context.Context) ([]domain.Question, error) {
	all, err := s.questions.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.LatestQuestions(all, s.now(), s.pageSize), nil
}

func (s *pollService) ListAll(ctx context.Context) ([]domain.Question, error) {
	return s.questions.List(ctx)
}

func (s *pollService) GetQuestion(ctx context.Context, id int64) (*domain.Question, error) {
	question, err := s.getPublished(ctx, id)
	if err != nil {
		return nil, err
	}
	choices, err := s.choices.ListByQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	question.Choices = choices
	return question, nil
}

func (s *pollService) GetResults(ctx context.Context, id int64) (*domain.Question, error) {
	return s.GetQuestion(ctx, id)
}

func (s *pollService) CreateQuestion(ctx context.Context, text string, pubDate *time.Time) (*domain.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("question text is required")
	}

	question := &domain.Question{
		Text:    text,
		PubDate: s.now().UTC(),
	}
	if pubDate != nil {
		question.PubDate = pubDate.UTC()
	}

	if _, err := s.questions.Create(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *pollService) AddChoice(ctx context.Context, questionID int64, text string) (*domain.Choice, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("choice text is required")
	}

	// admins may attach choices to not-yet-published questions
	if _, err := s.questions.Get(ctx, questionID); err != nil {
		return nil, err
	}

	choice := &domain.Choice{
		QuestionID: questionID,
		Text:       text,
	}
	if _, err := s.choices.Create(ctx, choice); err != nil {
		return nil, err
	}
	return choice, nil
}

func (s *pollService) DeleteQuestion(ctx context.Context, id int64) error {
	return s.questions.Delete(ctx, id)
}

// Vote records one vote for the given choice and returns a receipt id. The
// question must be published; voting on a future or absent question is a
// not-found outcome, same as the detail lookup.
func (s *pollService) Vote(ctx context.Context, questionID, choiceID int64) (string, error) {
	if _, err := s.getPublished(ctx, questionID); err != nil {
		return "", err
	}
	if err := s.choices.AddVote(ctx, questionID, choiceID); err != nil {
		return "", err
	}
	return uuid.NewString(), nil
}

func (s *pollService) getPublished(ctx context.Context, id int64) (*domain.Question, error) {
	question, err := s.questions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !question.IsPublished(s.now()) {
		// future questions look exactly like missing ones
		return nil, fmt.Errorf("question %d: %w", id, domain.ErrNotFound)
	}
	return question, nil
}
