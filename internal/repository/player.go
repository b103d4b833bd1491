package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cs-ladder/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: sqlDB, logger: logger}
}

const playerColumns = `name, elo, wins, losses, kills, deaths, assists, adr_total,
	mvps, total_rounds, streak_type, streak_count, is_online, created_at, updated_at`

func scanPlayer(row interface{ Scan(...any) error }) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(
		&p.Name, &p.Elo, &p.Wins, &p.Losses, &p.Kills, &p.Deaths, &p.Assists,
		&p.ADRTotal, &p.MVPs, &p.TotalRounds, &p.StreakType, &p.StreakCount,
		&p.IsOnline, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlayerRepository) Get(ctx context.Context, name string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE name = ? COLLATE NOCASE`, name)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %q: %w", name, err)
	}
	return p, nil
}

// GetTx reads a player inside a transaction so the rating update sees a
// consistent snapshot.
func (r *PlayerRepository) GetTx(ctx context.Context, tx *sql.Tx, name string) (*domain.Player, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE name = ? COLLATE NOCASE`, name)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %q: %w", name, err)
	}
	return p, nil
}

// List returns every player ordered by descending elo, ties by name.
func (r *PlayerRepository) List(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM players ORDER BY elo DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// ListByNames resolves a set of names to their player records. Missing names
// are simply absent from the result.
func (r *PlayerRepository) ListByNames(ctx context.Context, names []string) ([]domain.Player, error) {
	if len(names) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(names))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM players
		 WHERE name COLLATE NOCASE IN (`+placeholders+`)
		 ORDER BY elo DESC, name ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players by name: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO players (name, elo, streak_type, created_at, updated_at)
		 VALUES (?, ?, 'none', ?, ?)`,
		p.Name, p.Elo, now, now)
	if err != nil {
		return fmt.Errorf("failed to create player %q: %w", p.Name, err)
	}
	return nil
}

// UpdateTx writes the full counter set for a player within a transaction.
func (r *PlayerRepository) UpdateTx(ctx context.Context, tx *sql.Tx, p *domain.Player) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE players SET
			elo = ?, wins = ?, losses = ?, kills = ?, deaths = ?, assists = ?,
			adr_total = ?, mvps = ?, total_rounds = ?, streak_type = ?,
			streak_count = ?, updated_at = ?
		 WHERE name = ?`,
		p.Elo, p.Wins, p.Losses, p.Kills, p.Deaths, p.Assists,
		p.ADRTotal, p.MVPs, p.TotalRounds, p.StreakType,
		p.StreakCount, time.Now().UTC(), p.Name)
	if err != nil {
		return fmt.Errorf("failed to update player %q: %w", p.Name, err)
	}
	return nil
}

func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return n, nil
}

// SetOnline marks exactly the given names online and everyone else offline.
func (r *PlayerRepository) SetOnline(ctx context.Context, names []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE players SET is_online = 0`); err != nil {
		return fmt.Errorf("failed to clear online flags: %w", err)
	}
	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET is_online = 1 WHERE name = ? COLLATE NOCASE`, name); err != nil {
			return fmt.Errorf("failed to mark %q online: %w", name, err)
		}
	}
	return tx.Commit()
}

// ResetAll returns every player to the configured baseline.
func (r *PlayerRepository) ResetAll(ctx context.Context, startingElo int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE players SET
			elo = ?, wins = 0, losses = 0, kills = 0, deaths = 0, assists = 0,
			adr_total = 0, mvps = 0, total_rounds = 0, streak_type = 'none',
			streak_count = 0, updated_at = ?`,
		startingElo, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to reset players: %w", err)
	}
	return nil
}
