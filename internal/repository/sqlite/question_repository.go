package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"polls-server/internal/domain"
	"polls-server/internal/repository"
)

const createQuestionsTable = `
CREATE TABLE IF NOT EXISTS questions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question_text TEXT NOT NULL,
	pub_date DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type QuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) repository.QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createQuestionsTable); err != nil {
		return fmt.Errorf("create questions table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_questions_pub_date ON questions(pub_date)`); err != nil {
		return fmt.Errorf("create pub_date index: %w", err)
	}
	return nil
}

func (r *QuestionRepository) Create(ctx context.Context, question *domain.Question) (int64, error) {
	now := time.Now().UTC()
	question.CreatedAt = now
	question.UpdatedAt = now
	if question.PubDate.IsZero() {
		question.PubDate = now
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO questions (question_text, pub_date, created_at, updated_at)
VALUES (?, ?, ?, ?)`,
		question.Text,
		question.PubDate.UTC(),
		question.CreatedAt,
		question.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("question last insert id: %w", err)
	}
	question.ID = id
	return id, nil
}

func (r *QuestionRepository) Update(ctx context.Context, question *domain.Question) error {
	question.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE questions
SET question_text=?, pub_date=?, updated_at=?
WHERE id=?`,
		question.Text,
		question.PubDate.UTC(),
		question.UpdatedAt,
		question.ID,
	)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("question update rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("question %d: %w", question.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM choices WHERE question_id=?`, id); err != nil {
		return fmt.Errorf("delete question choices: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("question delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("question %d: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit question delete: %w", err)
	}
	return nil
}

func (r *QuestionRepository) Get(ctx context.Context, id int64) (*domain.Question, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, question_text, pub_date, created_at, updated_at
FROM questions
WHERE id=?`,
		id,
	)
	return scanQuestion(row)
}

func (r *QuestionRepository) List(ctx context.Context) ([]domain.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, question_text, pub_date, created_at, updated_at
FROM questions
ORDER BY pub_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}

	return questions, rows.Err()
}

func scanQuestion(scanner interface {
	Scan(dest ...any) error
}) (*domain.Question, error) {
	var (
		question  domain.Question
		pubDate   time.Time
		createdAt time.Time
		updatedAt time.Time
	)

	if err := scanner.Scan(
		&question.ID,
		&question.Text,
		&pubDate,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("question: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan question: %w", err)
	}

	question.PubDate = pubDate.UTC()
	question.CreatedAt = createdAt.UTC()
	question.UpdatedAt = updatedAt.UTC()
	return &question, nil
}
