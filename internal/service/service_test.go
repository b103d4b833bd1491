package service

import (
	"context"
	"database/sql"
	"testing"

	"cs-ladder/internal/config"
	"cs-ladder/internal/database"
	"cs-ladder/internal/domain"
	"cs-ladder/internal/repository"

	"github.com/rs/zerolog"
)

type testEnv struct {
	db         *sql.DB
	cfg        *config.Config
	playerRepo *repository.PlayerRepository
	matchRepo  *repository.MatchRepository
	eloRepo    *repository.EloHistoryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		DBPath:          ":memory:",
		StartingElo:     1000,
		EloKFactor:      25,
		MinBadgeMatches: 5,
		PageSize:        10,
	}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		db:         db,
		cfg:        cfg,
		playerRepo: repository.NewPlayerRepository(db, zerolog.Nop()),
		matchRepo:  repository.NewMatchRepository(db, zerolog.Nop()),
		eloRepo:    repository.NewEloHistoryRepository(db, zerolog.Nop()),
	}
}

func (e *testEnv) seed(t *testing.T, names []string, elos []int) {
	t.Helper()
	for i, name := range names {
		if err := e.playerRepo.Create(context.Background(), &domain.Player{Name: name, Elo: elos[i]}); err != nil {
			t.Fatalf("failed to seed %q: %v", name, err)
		}
	}
}

func tenNames() []string {
	return []string{"p01", "p02", "p03", "p04", "p05", "p06", "p07", "p08", "p09", "p10"}
}

func flatElos(n, elo int) []int {
	elos := make([]int, n)
	for i := range elos {
		elos[i] = elo
	}
	return elos
}

// proposalFor builds the proposal a test submission validates against.
func proposalFor(team1, team2 []string, t1Gain, t2Gain int) *domain.MatchProposal {
	toRoster := func(names []string) []domain.ProposalPlayer {
		roster := make([]domain.ProposalPlayer, len(names))
		for i, n := range names {
			roster[i] = domain.ProposalPlayer{Name: n, Elo: 1000}
		}
		return roster
	}
	return &domain.MatchProposal{
		Team1:   toRoster(team1),
		Team2:   toRoster(team2),
		MapName: "Dust2",
		T1Gain:  t1Gain,
		T2Gain:  t2Gain,
	}
}

func evenResults(names []string) []PlayerResult {
	results := make([]PlayerResult, len(names))
	for i, n := range names {
		results[i] = PlayerResult{Name: n, K: 15, D: 15, A: 5, ADR: 70}
	}
	return results
}
