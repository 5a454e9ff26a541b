package repository

import (
	"context"
	"fmt"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	insertHistoryQuery = `
INSERT INTO query_history (id, query, intent, result)
VALUES ($1, $2, $3, $4)
RETURNING created_at`

	listHistoryQuery = `
SELECT id, query, intent, result, created_at
FROM (
    SELECT seq, id, query, intent, result, created_at
    FROM query_history
    ORDER BY seq DESC
    LIMIT $1
) latest
ORDER BY seq ASC`
)

// HistoryPostgres implements HistoryRepository using PostgreSQL
type HistoryPostgres struct {
	db *pgxpool.Pool
}

func NewHistoryPostgres(db *pgxpool.Pool) *HistoryPostgres {
	return &HistoryPostgres{
		db: db,
	}
}

func (r *HistoryPostgres) Add(ctx context.Context, entry entity.HistoryEntry) (*entity.HistoryEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	entryID, err := uuid.Parse(entry.ID)
	if err != nil {
		return nil, fmt.Errorf("parse history ID: %w", err)
	}

	var createdAt pgtype.Timestamptz
	err = r.db.QueryRow(ctx, insertHistoryQuery,
		pgtype.UUID{Bytes: entryID, Valid: true},
		entry.Query,
		entry.Intent,
		[]byte(entry.Result),
	).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert history entry: %w", err)
	}

	entry.CreatedAt = createdAt.Time
	return &entry, nil
}

func (r *HistoryPostgres) List(ctx context.Context, limit int) ([]*entity.HistoryEntry, error) {
	// LIMIT NULL is LIMIT ALL
	var limitArg pgtype.Int8
	if limit > 0 {
		limitArg = pgtype.Int8{Int64: int64(limit), Valid: true}
	}

	rows, err := r.db.Query(ctx, listHistoryQuery, limitArg)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.HistoryEntry, error) {
		var (
			id        pgtype.UUID
			entry     entity.HistoryEntry
			result    []byte
			createdAt pgtype.Timestamptz
		)
		if err := row.Scan(&id, &entry.Query, &entry.Intent, &result, &createdAt); err != nil {
			return nil, err
		}

		entry.ID = uuid.UUID(id.Bytes).String()
		entry.Result = result
		entry.CreatedAt = createdAt.Time
		return &entry, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}

	return entries, nil
}
