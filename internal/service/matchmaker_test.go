package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cs-ladder/internal/constants"
	"cs-ladder/internal/domain"

	"github.com/rs/zerolog"
)

func newMatchmaker(env *testEnv) *MatchmakerService {
	return NewMatchmakerService(env.playerRepo, env.matchRepo, env.cfg, zerolog.Nop())
}

func TestProposeMatchInsufficientPlayers(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, []string{"a", "b", "c"}, flatElos(3, 1000))
	svc := newMatchmaker(env)

	_, err := svc.ProposeMatch(context.Background(), []string{"a", "b", "c"})
	if !errors.Is(err, domain.ErrInsufficientPlayers) {
		t.Fatalf("expected ErrInsufficientPlayers, got %v", err)
	}
	if _, active := svc.Current(); active {
		t.Error("failed proposal should not be retained")
	}
}

func TestProposeMatchEqualTeams(t *testing.T) {
	env := newTestEnv(t)
	names := tenNames()
	env.seed(t, names, flatElos(10, 1000))
	svc := newMatchmaker(env)

	proposal, err := svc.ProposeMatch(context.Background(), names)
	if err != nil {
		t.Fatalf("ProposeMatch: %v", err)
	}

	if len(proposal.Team1) != constants.TeamSize || len(proposal.Team2) != constants.TeamSize {
		t.Fatalf("team sizes %d/%d, want 5/5", len(proposal.Team1), len(proposal.Team2))
	}
	if proposal.EloDiff != 0 {
		t.Errorf("elo diff = %d, want 0", proposal.EloDiff)
	}
	// equal sides with K=25 split the pot 12/12
	if proposal.T1Gain != 12 || proposal.T2Gain != 12 {
		t.Errorf("gains = %d/%d, want 12/12", proposal.T1Gain, proposal.T2Gain)
	}

	seen := make(map[string]bool)
	for _, p := range append(append([]domain.ProposalPlayer{}, proposal.Team1...), proposal.Team2...) {
		if seen[p.Name] {
			t.Errorf("player %q assigned twice", p.Name)
		}
		seen[p.Name] = true
	}
	if len(seen) != constants.MatchSize {
		t.Errorf("proposal covers %d players, want %d", len(seen), constants.MatchSize)
	}
}

func TestProposeMatchBalances(t *testing.T) {
	env := newTestEnv(t)
	names := tenNames()
	// mirrored pairs, so a zero-difference split exists
	elos := []int{1400, 1400, 1200, 1200, 1000, 1000, 900, 900, 800, 800}
	env.seed(t, names, elos)
	svc := newMatchmaker(env)

	proposal, err := svc.ProposeMatch(context.Background(), names)
	if err != nil {
		t.Fatalf("ProposeMatch: %v", err)
	}

	if proposal.EloDiff != 0 {
		t.Errorf("elo diff = %d, want 0", proposal.EloDiff)
	}
}

func TestProposeMatchUnderdogGainsMore(t *testing.T) {
	env := newTestEnv(t)
	names := tenNames()
	// p01..p05 strong, p06..p10 weak; no split is even, so one side is always
	// the favorite
	elos := []int{2000, 2000, 2000, 2000, 2000, 1000, 1000, 1000, 1000, 1200}
	env.seed(t, names, elos)
	svc := newMatchmaker(env)

	proposal, err := svc.ProposeMatch(context.Background(), names)
	if err != nil {
		t.Fatalf("ProposeMatch: %v", err)
	}
	if proposal.EloDiff == 0 {
		t.Fatal("expected an uneven split")
	}
	if proposal.T1Gain == proposal.T2Gain {
		t.Errorf("uneven teams should have asymmetric gains, got %d/%d",
			proposal.T1Gain, proposal.T2Gain)
	}
	if proposal.T1Gain+proposal.T2Gain > env.cfg.EloKFactor {
		t.Errorf("gains %d+%d exceed the K-factor", proposal.T1Gain, proposal.T2Gain)
	}
}

func TestProposeMatchPicksTopTen(t *testing.T) {
	env := newTestEnv(t)
	names := append(tenNames(), "p11", "p12")
	elos := append(flatElos(10, 1200), 900, 800)
	env.seed(t, names, elos)
	svc := newMatchmaker(env)

	proposal, err := svc.ProposeMatch(context.Background(), names)
	if err != nil {
		t.Fatalf("ProposeMatch: %v", err)
	}
	for _, p := range append(append([]domain.ProposalPlayer{}, proposal.Team1...), proposal.Team2...) {
		if p.Name == "p11" || p.Name == "p12" {
			t.Errorf("low-rated %q selected over a higher-rated player", p.Name)
		}
	}
}

func TestProposalCommand(t *testing.T) {
	env := newTestEnv(t)
	names := tenNames()
	env.seed(t, names, flatElos(10, 1000))
	svc := newMatchmaker(env)

	proposal, err := svc.ProposeMatch(context.Background(), names)
	if err != nil {
		t.Fatalf("ProposeMatch: %v", err)
	}

	if !strings.HasPrefix(proposal.Command, "bot_kick\n") {
		t.Errorf("command should start with bot_kick, got %q", proposal.Command)
	}
	if n := strings.Count(proposal.Command, "bot_add_ct 3 "); n != constants.TeamSize {
		t.Errorf("%d bot_add_ct lines, want %d", n, constants.TeamSize)
	}
	if n := strings.Count(proposal.Command, "bot_add_t 3 "); n != constants.TeamSize {
		t.Errorf("%d bot_add_t lines, want %d", n, constants.TeamSize)
	}
	for _, p := range proposal.Team1 {
		if !strings.Contains(proposal.Command, `bot_add_ct 3 "`+p.Name+`"`) {
			t.Errorf("command missing team 1 player %q", p.Name)
		}
	}
}

func TestProposalLifecycle(t *testing.T) {
	env := newTestEnv(t)
	names := tenNames()
	env.seed(t, names, flatElos(10, 1000))
	svc := newMatchmaker(env)

	if _, active := svc.Current(); active {
		t.Fatal("fresh service should have no proposal")
	}

	if _, err := svc.ProposeMatch(context.Background(), names); err != nil {
		t.Fatalf("ProposeMatch: %v", err)
	}
	if _, active := svc.Current(); !active {
		t.Fatal("proposal should be active after creation")
	}

	svc.Clear()
	if _, active := svc.Current(); active {
		t.Fatal("proposal should be gone after Clear")
	}
}

func TestPickMapPrefersLeastPlayed(t *testing.T) {
	env := newTestEnv(t)
	names := tenNames()
	env.seed(t, names, flatElos(10, 1000))
	svc := newMatchmaker(env)
	ctx := context.Background()

	// empty history: rotation order wins the all-zero tie
	proposal, err := svc.ProposeMatch(ctx, names)
	if err != nil {
		t.Fatalf("ProposeMatch: %v", err)
	}
	if proposal.MapName != constants.MapPool[0] {
		t.Errorf("map = %q, want %q on empty history", proposal.MapName, constants.MapPool[0])
	}

	// play every map but Nuke once
	for _, m := range constants.MapPool {
		if m == "Nuke" {
			continue
		}
		insertTestMatch(t, env, m)
	}

	proposal, err = svc.ProposeMatch(ctx, names)
	if err != nil {
		t.Fatalf("ProposeMatch: %v", err)
	}
	if proposal.MapName != "Nuke" {
		t.Errorf("map = %q, want the unplayed Nuke", proposal.MapName)
	}
}

func insertTestMatch(t *testing.T, env *testEnv, mapName string) {
	t.Helper()
	tx, err := env.db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	_, err = env.matchRepo.InsertTx(context.Background(), tx, &domain.Match{
		MapName: mapName, Team1Score: 16, Team2Score: 10,
		WinningTeam: "Team 1", TotalRounds: 26,
	}, nil)
	if err != nil {
		tx.Rollback()
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}
