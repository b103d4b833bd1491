package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cs-ladder/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type EloHistoryRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewEloHistoryRepository(sqlDB *sql.DB, logger zerolog.Logger) *EloHistoryRepository {
	return &EloHistoryRepository{db: sqlDB, logger: logger}
}

// InsertTx records one rating change within the caller's transaction.
func (r *EloHistoryRepository) InsertTx(ctx context.Context, tx *sql.Tx, rec *domain.EloHistory) error {
	id := rec.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO elo_history (id, name, match_num, elo, delta, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, rec.Name, rec.MatchNum, rec.Elo, rec.Delta, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert elo history: %w", err)
	}
	return nil
}

// ByName returns every rating change for one player, oldest first.
func (r *EloHistoryRepository) ByName(ctx context.Context, name string) ([]domain.EloHistory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, match_num, elo, delta, created_at
		 FROM elo_history WHERE name = ? COLLATE NOCASE
		 ORDER BY created_at ASC, match_num ASC`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load elo history for %q: %w", name, err)
	}
	defer rows.Close()

	var records []domain.EloHistory
	for rows.Next() {
		var rec domain.EloHistory
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.MatchNum, &rec.Elo,
			&rec.Delta, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan elo history: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *EloHistoryRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM elo_history`); err != nil {
		return fmt.Errorf("failed to delete elo history: %w", err)
	}
	return nil
}
