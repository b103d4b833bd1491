package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cs-ladder/internal/domain"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: sqlDB, logger: logger}
}

// MatchWithLine pairs a match with one player's stat line in it, for the
// per-player history view.
type MatchWithLine struct {
	Match domain.Match
	Line  domain.MatchPlayer
}

// InsertTx writes the match row and both teams' stat lines atomically with
// the caller's transaction and returns the assigned match number.
func (r *MatchRepository) InsertTx(ctx context.Context, tx *sql.Tx, m *domain.Match, lines []domain.MatchPlayer) (int, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO matches (map_name, team1_score, team2_score, winning_team,
			total_rounds, mvp_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.MapName, m.Team1Score, m.Team2Score, m.WinningTeam,
		m.TotalRounds, m.MVPName, m.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert match: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read match id: %w", err)
	}
	matchNum := int(id)

	for _, line := range lines {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO match_players (match_num, name, team, kills, deaths, assists, adr, mvp)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			matchNum, line.Name, line.Team, line.Kills, line.Deaths,
			line.Assists, line.ADR, line.MVP)
		if err != nil {
			return 0, fmt.Errorf("failed to insert match line for %q: %w", line.Name, err)
		}
	}

	return matchNum, nil
}

// List returns one page of matches, newest first. Page numbers are 1-based.
func (r *MatchRepository) List(ctx context.Context, page, pageSize int) ([]domain.Match, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := r.db.QueryContext(ctx,
		`SELECT match_num, map_name, team1_score, team2_score, winning_team,
			total_rounds, mvp_name, created_at
		 FROM matches ORDER BY match_num DESC LIMIT ? OFFSET ?`,
		pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// All returns the complete history, newest first.
func (r *MatchRepository) All(ctx context.Context) ([]domain.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT match_num, map_name, team1_score, team2_score, winning_team,
			total_rounds, mvp_name, created_at
		 FROM matches ORDER BY match_num DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

func scanMatches(rows *sql.Rows) ([]domain.Match, error) {
	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.MatchNum, &m.MapName, &m.Team1Score, &m.Team2Score,
			&m.WinningTeam, &m.TotalRounds, &m.MVPName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *MatchRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return n, nil
}

// Get returns the match and both teams' stat lines.
func (r *MatchRepository) Get(ctx context.Context, matchNum int) (*domain.Match, []domain.MatchPlayer, error) {
	var m domain.Match
	err := r.db.QueryRowContext(ctx,
		`SELECT match_num, map_name, team1_score, team2_score, winning_team,
			total_rounds, mvp_name, created_at
		 FROM matches WHERE match_num = ?`, matchNum).
		Scan(&m.MatchNum, &m.MapName, &m.Team1Score, &m.Team2Score,
			&m.WinningTeam, &m.TotalRounds, &m.MVPName, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("match %d: %w", matchNum, domain.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get match %d: %w", matchNum, err)
	}

	lines, err := r.linesFor(ctx, matchNum)
	if err != nil {
		return nil, nil, err
	}
	return &m, lines, nil
}

func (r *MatchRepository) linesFor(ctx context.Context, matchNum int) ([]domain.MatchPlayer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT match_num, name, team, kills, deaths, assists, adr, mvp
		 FROM match_players WHERE match_num = ?
		 ORDER BY team ASC, kills DESC, name ASC`, matchNum)
	if err != nil {
		return nil, fmt.Errorf("failed to load match lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.MatchPlayer
	for rows.Next() {
		var l domain.MatchPlayer
		if err := rows.Scan(&l.MatchNum, &l.Name, &l.Team, &l.Kills, &l.Deaths,
			&l.Assists, &l.ADR, &l.MVP); err != nil {
			return nil, fmt.Errorf("failed to scan match line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// AllLines returns every recorded stat line joined with its match, ordered by
// ascending match number so earliest-occurrence tie-breaks fall out of scan
// order.
func (r *MatchRepository) AllLines(ctx context.Context) ([]MatchWithLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.match_num, m.map_name, m.team1_score, m.team2_score, m.winning_team,
			m.total_rounds, m.mvp_name, m.created_at,
			p.name, p.team, p.kills, p.deaths, p.assists, p.adr, p.mvp
		 FROM matches m JOIN match_players p ON p.match_num = m.match_num
		 ORDER BY m.match_num ASC, p.team ASC, p.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load match lines: %w", err)
	}
	defer rows.Close()

	return scanMatchLines(rows)
}

// ByPlayer returns every match the player appears in together with their
// line, oldest first.
func (r *MatchRepository) ByPlayer(ctx context.Context, name string) ([]MatchWithLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.match_num, m.map_name, m.team1_score, m.team2_score, m.winning_team,
			m.total_rounds, m.mvp_name, m.created_at,
			p.name, p.team, p.kills, p.deaths, p.assists, p.adr, p.mvp
		 FROM matches m JOIN match_players p ON p.match_num = m.match_num
		 WHERE p.name = ? COLLATE NOCASE
		 ORDER BY m.match_num ASC`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches for %q: %w", name, err)
	}
	defer rows.Close()

	return scanMatchLines(rows)
}

func scanMatchLines(rows *sql.Rows) ([]MatchWithLine, error) {
	var result []MatchWithLine
	for rows.Next() {
		var mw MatchWithLine
		if err := rows.Scan(
			&mw.Match.MatchNum, &mw.Match.MapName, &mw.Match.Team1Score,
			&mw.Match.Team2Score, &mw.Match.WinningTeam, &mw.Match.TotalRounds,
			&mw.Match.MVPName, &mw.Match.CreatedAt,
			&mw.Line.Name, &mw.Line.Team, &mw.Line.Kills, &mw.Line.Deaths,
			&mw.Line.Assists, &mw.Line.ADR, &mw.Line.MVP); err != nil {
			return nil, fmt.Errorf("failed to scan match line: %w", err)
		}
		mw.Line.MatchNum = mw.Match.MatchNum
		result = append(result, mw)
	}
	return result, rows.Err()
}

// MapStats aggregates games and rounds per map.
func (r *MatchRepository) MapStats(ctx context.Context) ([]domain.MapStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT map_name, COUNT(*), SUM(total_rounds)
		 FROM matches GROUP BY map_name ORDER BY COUNT(*) DESC, map_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate map stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.MapStat
	for rows.Next() {
		var s domain.MapStat
		if err := rows.Scan(&s.MapName, &s.NumGames, &s.TotalRounds); err != nil {
			return nil, fmt.Errorf("failed to scan map stat: %w", err)
		}
		if s.NumGames > 0 {
			s.AvgRounds = float64(s.TotalRounds) / float64(s.NumGames)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// MapGameCounts returns how many matches were played on each map.
func (r *MatchRepository) MapGameCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT map_name, COUNT(*) FROM matches GROUP BY map_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to count map games: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan map count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// DeleteAll wipes the full match history. Used by the ladder reset.
func (r *MatchRepository) DeleteAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM match_players`); err != nil {
		return fmt.Errorf("failed to delete match lines: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM matches`); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	return tx.Commit()
}
