package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"polls-server/internal/domain"
	"polls-server/internal/repository"
)

const createChoicesTable = `
CREATE TABLE IF NOT EXISTS choices (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question_id INTEGER NOT NULL REFERENCES questions(id),
	choice_text TEXT NOT NULL,
	votes INTEGER NOT NULL DEFAULT 0
);
`

type ChoiceRepository struct {
	db *sql.DB
}

func NewChoiceRepository(db *sql.DB) repository.ChoiceRepository {
	return &ChoiceRepository{db: db}
}

func (r *ChoiceRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createChoicesTable); err != nil {
		return fmt.Errorf("create choices table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_choices_question_id ON choices(question_id)`); err != nil {
		return fmt.Errorf("create question_id index: %w", err)
	}
	return nil
}

func (r *ChoiceRepository) Create(ctx context.Context, choice *domain.Choice) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO choices (question_id, choice_text, votes)
VALUES (?, ?, ?)`,
		choice.QuestionID,
		choice.Text,
		choice.Votes,
	)
	if err != nil {
		return 0, fmt.Errorf("insert choice: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("choice last insert id: %w", err)
	}
	choice.ID = id
	return id, nil
}

func (r *ChoiceRepository) ListByQuestion(ctx context.Context, questionID int64) ([]domain.Choice, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, question_id, choice_text, votes
FROM choices
WHERE question_id=?
ORDER BY id ASC`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query choices: %w", err)
	}
	defer rows.Close()

	var choices []domain.Choice
	for rows.Next() {
		var c domain.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Text, &c.Votes); err != nil {
			return nil, fmt.Errorf("scan choice: %w", err)
		}
		choices = append(choices, c)
	}

	return choices, rows.Err()
}

// AddVote increments the vote counter in a single UPDATE so concurrent votes
// never lose increments.
func (r *ChoiceRepository) AddVote(ctx context.Context, questionID, choiceID int64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE choices
SET votes = votes + 1
WHERE id=? AND question_id=?`,
		choiceID,
		questionID,
	)
	if err != nil {
		return fmt.Errorf("add vote: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("vote rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("choice %d for question %d: %w", choiceID, questionID, domain.ErrNotFound)
	}
	return nil
}
