package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"polls-server/internal/domain"
	"polls-server/internal/repository"
	"polls-server/internal/repository/sqlite"
)

var testNow = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type pollFixture struct {
	polls     PollService
	questions repository.QuestionRepository
	choices   repository.ChoiceRepository
}

func newPollFixture(t *testing.T, pageSize int) *pollFixture {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	questions := sqlite.NewQuestionRepository(db)
	choices := sqlite.NewChoiceRepository(db)
	if err := questions.Init(ctx); err != nil {
		t.Fatalf("init question repository: %v", err)
	}
	if err := choices.Init(ctx); err != nil {
		t.Fatalf("init choice repository: %v", err)
	}

	return &pollFixture{
		polls:     NewPollService(questions, choices, pageSize, fixedClock),
		questions: questions,
		choices:   choices,
	}
}

// createQuestion inserts a question published the given number of days offset
// from the fixture clock (negative for the past, positive for the future).
func (f *pollFixture) createQuestion(t *testing.T, text string, days int) int64 {
	t.Helper()

	id, err := f.questions.Create(context.Background(), &domain.Question{
		Text:    text,
		PubDate: testNow.Add(time.Duration(days) * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return id
}

func (f *pollFixture) addChoice(t *testing.T, questionID int64, text string) int64 {
	t.Helper()

	choice := &domain.Choice{QuestionID: questionID, Text: text}
	if _, err := f.choices.Create(context.Background(), choice); err != nil {
		t.Fatalf("create choice: %v", err)
	}
	return choice.ID
}

func TestListLatestNoQuestions(t *testing.T) {
	f := newPollFixture(t, 5)

	questions, err := f.polls.ListLatest(context.Background())
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(questions) != 0 {
		t.Errorf("got %d questions, want 0", len(questions))
	}
}

func TestListLatestPastQuestion(t *testing.T) {
	f := newPollFixture(t, 5)
	f.createQuestion(t, "Past question.", -30)

	questions, err := f.polls.ListLatest(context.Background())
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(questions) != 1 || questions[0].Text != "Past question." {
		t.Errorf("got %+v, want exactly the past question", questions)
	}
}

func TestListLatestFutureQuestionHidden(t *testing.T) {
	f := newPollFixture(t, 5)
	f.createQuestion(t, "Future question.", 30)

	questions, err := f.polls.ListLatest(context.Background())
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(questions) != 0 {
		t.Errorf("got %d questions, want 0", len(questions))
	}
}

func TestListLatestFutureAndPastQuestions(t *testing.T) {
	f := newPollFixture(t, 5)
	f.createQuestion(t, "Past question.", -30)
	f.createQuestion(t, "Future question.", 30)

	questions, err := f.polls.ListLatest(context.Background())
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(questions) != 1 || questions[0].Text != "Past question." {
		t.Errorf("got %+v, want only the past question", questions)
	}
}

func TestListLatestTwoPastQuestionsOrder(t *testing.T) {
	f := newPollFixture(t, 5)
	f.createQuestion(t, "Past question 1.", -30)
	f.createQuestion(t, "Past question 2.", -5)

	questions, err := f.polls.ListLatest(context.Background())
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}

	want := []string{"Past question 2.", "Past question 1."}
	if len(questions) != len(want) {
		t.Fatalf("got %d questions, want %d", len(questions), len(want))
	}
	for i, text := range want {
		if questions[i].Text != text {
			t.Errorf("position %d: got %q, want %q", i, questions[i].Text, text)
		}
	}
}

func TestListLatestPageSize(t *testing.T) {
	f := newPollFixture(t, 5)
	for i := 1; i <= 7; i++ {
		f.createQuestion(t, "q", -i)
	}

	questions, err := f.polls.ListLatest(context.Background())
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(questions) != 5 {
		t.Errorf("got %d questions, want page size 5", len(questions))
	}
}

func TestListAllIncludesFuture(t *testing.T) {
	f := newPollFixture(t, 5)
	f.createQuestion(t, "Past question.", -5)
	f.createQuestion(t, "Future question.", 5)

	questions, err := f.polls.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(questions) != 2 {
		t.Errorf("got %d questions, want 2", len(questions))
	}
}

func TestGetQuestionFutureIsNotFound(t *testing.T) {
	f := newPollFixture(t, 5)
	id := f.createQuestion(t, "Future question.", 5)

	_, err := f.polls.GetQuestion(context.Background(), id)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for future question, got %v", err)
	}
}

func TestGetQuestionMissingIsNotFound(t *testing.T) {
	f := newPollFixture(t, 5)

	_, err := f.polls.GetQuestion(context.Background(), 12345)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing question, got %v", err)
	}
}

func TestGetQuestionPast(t *testing.T) {
	f := newPollFixture(t, 5)
	id := f.createQuestion(t, "Past Question.", -5)
	f.addChoice(t, id, "yes")
	f.addChoice(t, id, "no")

	question, err := f.polls.GetQuestion(context.Background(), id)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if question.Text != "Past Question." {
		t.Errorf("text = %q, want %q", question.Text, "Past Question.")
	}
	if len(question.Choices) != 2 {
		t.Errorf("got %d choices, want 2", len(question.Choices))
	}
}

func TestCreateQuestion(t *testing.T) {
	f := newPollFixture(t, 5)

	question, err := f.polls.CreateQuestion(context.Background(), "Fresh question?", nil)
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	if question.ID == 0 {
		t.Error("expected a persisted id")
	}
	if !question.PubDate.Equal(testNow) {
		t.Errorf("pub date = %v, want clock now %v", question.PubDate, testNow)
	}
	if !question.WasPublishedRecently(testNow) {
		t.Error("question published now should be recent")
	}

	if _, err := f.polls.CreateQuestion(context.Background(), "   ", nil); err == nil {
		t.Error("expected error for blank text")
	}
}

func TestCreateQuestionScheduled(t *testing.T) {
	f := newPollFixture(t, 5)

	pubDate := testNow.Add(72 * time.Hour)
	question, err := f.polls.CreateQuestion(context.Background(), "Scheduled question?", &pubDate)
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	// scheduled question is admin-visible but hidden from the public index
	latest, err := f.polls.ListLatest(context.Background())
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(latest) != 0 {
		t.Errorf("scheduled question leaked into the index: %+v", latest)
	}

	if _, err := f.polls.GetQuestion(context.Background(), question.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound before publication, got %v", err)
	}
}

func TestAddChoice(t *testing.T) {
	f := newPollFixture(t, 5)
	id := f.createQuestion(t, "Scheduled question?", 5)

	// attaching choices to a not-yet-published question is allowed
	choice, err := f.polls.AddChoice(context.Background(), id, "option a")
	if err != nil {
		t.Fatalf("add choice: %v", err)
	}
	if choice.ID == 0 {
		t.Error("expected a persisted choice id")
	}

	if _, err := f.polls.AddChoice(context.Background(), 9999, "orphan"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing question, got %v", err)
	}
	if _, err := f.polls.AddChoice(context.Background(), id, ""); err == nil {
		t.Error("expected error for blank choice text")
	}
}

func TestVote(t *testing.T) {
	f := newPollFixture(t, 5)
	qid := f.createQuestion(t, "Best editor?", -1)
	cid := f.addChoice(t, qid, "ed")

	receipt, err := f.polls.Vote(context.Background(), qid, cid)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if receipt == "" {
		t.Error("expected a vote receipt")
	}

	question, err := f.polls.GetResults(context.Background(), qid)
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	if question.Choices[0].Votes != 1 {
		t.Errorf("votes = %d, want 1", question.Choices[0].Votes)
	}
}

func TestVoteOnFutureQuestion(t *testing.T) {
	f := newPollFixture(t, 5)
	qid := f.createQuestion(t, "Future question.", 5)
	cid := f.addChoice(t, qid, "early bird")

	_, err := f.polls.Vote(context.Background(), qid, cid)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestVoteOnForeignChoice(t *testing.T) {
	f := newPollFixture(t, 5)
	q1 := f.createQuestion(t, "one", -1)
	q2 := f.createQuestion(t, "two", -1)
	cid := f.addChoice(t, q2, "belongs to two")

	_, err := f.polls.Vote(context.Background(), q1, cid)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteQuestion(t *testing.T) {
	f := newPollFixture(t, 5)
	id := f.createQuestion(t, "short lived", -1)

	if err := f.polls.DeleteQuestion(context.Background(), id); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	if _, err := f.polls.GetQuestion(context.Background(), id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
