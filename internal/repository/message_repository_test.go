package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/clubhouse/internal/domain"
)

func TestMessageRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO messages`).
		WithArgs("hello", "u1", now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("m1"))

	repo := NewMessageRepository(mock)
	msg := &domain.Message{Body: "hello", AuthorID: "u1", CreatedAt: now}
	require.NoError(t, repo.Create(context.Background(), msg))

	assert.Equal(t, "m1", msg.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryListOrdersByBody(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`ORDER BY m.body ASC`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "body", "author_id", "created_at", "author_name"}).
			AddRow("m2", "a-msg", "u1", now, "Ada Lovelace").
			AddRow("m1", "b-msg", "u1", now, "Ada Lovelace").
			AddRow("m3", "c-msg", "u2", now, "Grace Hopper"))

	repo := NewMessageRepository(mock)
	entries, err := repo.List(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, "a-msg", entries[0].Body)
	assert.Equal(t, "b-msg", entries[1].Body)
	assert.Equal(t, "c-msg", entries[2].Body)
	assert.Equal(t, "Ada Lovelace", entries[0].AuthorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM messages WHERE id=`).
		WithArgs("m1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewMessageRepository(mock)
	require.NoError(t, repo.Delete(context.Background(), "m1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryDeleteUnknownID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM messages WHERE id=`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewMessageRepository(mock)
	err = repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
