package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clubhouse/internal/domain"
)

// MessageRepository manages feed messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	List(ctx context.Context) ([]domain.FeedEntry, error)
	Delete(ctx context.Context, id string) error
}

type messageRepository struct {
	db DB
}

// NewMessageRepository builds repository.
func NewMessageRepository(db DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (body, author_id, created_at)
        VALUES ($1, $2, $3)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		msg.Body,
		msg.AuthorID,
		msg.CreatedAt,
	).Scan(&msg.ID)
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	const query = `
        SELECT id, body, author_id, created_at
        FROM messages WHERE id=$1`

	var msg domain.Message
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&msg.ID,
		&msg.Body,
		&msg.AuthorID,
		&msg.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}

// List returns every message ordered lexicographically by body, the feed's
// declared sort key. Author names are resolved at read time since author_id
// is a bare identifier, not a foreign key.
func (r *messageRepository) List(ctx context.Context) ([]domain.FeedEntry, error) {
	const query = `
        SELECT m.id, m.body, m.author_id, m.created_at,
               COALESCE(u.first_name || ' ' || u.last_name, m.author_id)
        FROM messages m
        LEFT JOIN users u ON u.id::text = m.author_id
        ORDER BY m.body ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FeedEntry
	for rows.Next() {
		var entry domain.FeedEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Body,
			&entry.AuthorID,
			&entry.CreatedAt,
			&entry.AuthorName,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *messageRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM messages WHERE id=$1`

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
