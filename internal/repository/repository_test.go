package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cs-ladder/internal/config"
	"cs-ladder/internal/database"
	"cs-ladder/internal/domain"

	"github.com/rs/zerolog"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(&config.Config{DBPath: ":memory:"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertMatch(t *testing.T, db *sql.DB, repo *MatchRepository, m *domain.Match, lines []domain.MatchPlayer) int {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}
	num, err := repo.InsertTx(context.Background(), tx, m, lines)
	if err != nil {
		tx.Rollback()
		t.Fatalf("failed to insert match: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return num
}

func testMatch(mapName string, t1, t2 int) *domain.Match {
	win := "Team 1"
	if t2 > t1 {
		win = "Team 2"
	}
	return &domain.Match{
		MapName:     mapName,
		Team1Score:  t1,
		Team2Score:  t2,
		WinningTeam: win,
		TotalRounds: t1 + t2,
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}
