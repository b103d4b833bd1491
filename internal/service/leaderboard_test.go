package service

import (
	"fmt"
	"testing"

	"cs-ladder/internal/config"
	"cs-ladder/internal/domain"

	"github.com/rs/zerolog"
)

func newLeaderboard(minMatches int) *LeaderboardService {
	cfg := &config.Config{MinBadgeMatches: minMatches}
	return NewLeaderboardService(nil, cfg, zerolog.Nop())
}

// ladderPlayer builds a player with enough matches to qualify for badges and
// a kill count that makes the per-metric order easy to reason about.
func ladderPlayer(name string, elo, kills int) domain.Player {
	return domain.Player{
		Name:        name,
		Elo:         elo,
		Wins:        5,
		Losses:      5,
		Kills:       kills,
		Deaths:      100,
		Assists:     30,
		ADRTotal:    750,
		TotalRounds: 250,
	}
}

func TestComputeRankingsEloOrder(t *testing.T) {
	svc := newLeaderboard(5)
	players := []domain.Player{
		ladderPlayer("carol", 1100, 100),
		ladderPlayer("alice", 1300, 120),
		ladderPlayer("bob", 1300, 110),
	}

	rows := svc.ComputeRankings(players)

	want := []struct {
		name string
		rank int
	}{{"alice", 1}, {"bob", 2}, {"carol", 3}}
	for i, w := range want {
		if rows[i].Name != w.name || rows[i].Rank != w.rank {
			t.Errorf("row %d = %s/%d, want %s/%d", i, rows[i].Name, rows[i].Rank, w.name, w.rank)
		}
	}
	if !rows[0].IsTopThree || !rows[2].IsTopThree {
		t.Error("all three players should carry the top-three highlight")
	}
	if rows[0].Tier != "gosu" || rows[0].RankIcon != "assets/logos/gosu.svg" {
		t.Errorf("tier rendering: %s / %s", rows[0].Tier, rows[0].RankIcon)
	}
}

func TestChampionAndLeaderExclusive(t *testing.T) {
	svc := newLeaderboard(5)
	players := make([]domain.Player, 8)
	for i := range players {
		players[i] = ladderPlayer(fmt.Sprintf("p%02d", i+1), 1000+i, 80+10*i)
	}

	rows := svc.ComputeRankings(players)

	champions := 0
	for _, row := range rows {
		champ := row.Badges["is_kd_champion"]
		leader := row.Badges["is_kd_leader"]
		if champ && leader {
			t.Errorf("%s is both champion and leader", row.Name)
		}
		if champ {
			champions++
			if row.MetricRanks["kd"] != 1 {
				t.Errorf("champion %s has kd rank %d", row.Name, row.MetricRanks["kd"])
			}
		}
		if leader && (row.MetricRanks["kd"] < 2 || row.MetricRanks["kd"] > 5) {
			t.Errorf("leader %s has kd rank %d", row.Name, row.MetricRanks["kd"])
		}
	}
	if champions != 1 {
		t.Errorf("%d kd champions, want exactly 1", champions)
	}
}

func TestColdBadges(t *testing.T) {
	svc := newLeaderboard(5)
	players := make([]domain.Player, 8)
	for i := range players {
		players[i] = ladderPlayer(fmt.Sprintf("p%02d", i+1), 1000+i, 80+10*i)
	}

	rows := svc.ComputeRankings(players)

	for _, row := range rows {
		if row.Badges["is_kd_cold_champion"] {
			if row.MetricRanks["kd"] != len(players) {
				t.Errorf("cold champion %s has kd rank %d, want %d",
					row.Name, row.MetricRanks["kd"], len(players))
			}
			if row.Badges["is_kd_champion"] || row.Badges["is_kd_leader"] {
				t.Errorf("%s holds contradictory kd badges", row.Name)
			}
		}
	}
}

func TestBadgeThreshold(t *testing.T) {
	svc := newLeaderboard(5)
	rookie := domain.Player{Name: "rookie", Elo: 2000, Wins: 1, Losses: 0, Kills: 500, Deaths: 1, TotalRounds: 16}
	players := []domain.Player{
		rookie,
		ladderPlayer("vet1", 1100, 120),
		ladderPlayer("vet2", 1050, 110),
	}

	rows := svc.ComputeRankings(players)

	if rows[0].Name != "rookie" || rows[0].Rank != 1 {
		t.Fatalf("elo rank ignores the badge threshold, got %s/%d", rows[0].Name, rows[0].Rank)
	}
	if rows[0].MetricRanks["kd"] != 0 {
		t.Errorf("rookie has a kd rank despite %d matches", rookie.Matches())
	}
	for badge, held := range rows[0].Badges {
		if held {
			t.Errorf("rookie holds %s with too few matches", badge)
		}
	}
	if rows[1].MetricRanks["kd"] != 1 {
		t.Errorf("best qualified player should hold kd rank 1, got %d", rows[1].MetricRanks["kd"])
	}
}

func TestComputeRankingsIdempotent(t *testing.T) {
	svc := newLeaderboard(5)
	players := []domain.Player{
		ladderPlayer("a", 1200, 100),
		ladderPlayer("b", 1100, 120),
		ladderPlayer("c", 1000, 90),
	}

	first := svc.ComputeRankings(players)
	second := svc.ComputeRankings(players)

	for i := range first {
		if first[i].Name != second[i].Name || first[i].Rank != second[i].Rank ||
			first[i].Rating != second[i].Rating {
			t.Fatalf("pass 2 differs at row %d: %+v vs %+v", i, first[i], second[i])
		}
		for badge, held := range first[i].Badges {
			if second[i].Badges[badge] != held {
				t.Errorf("badge %s flipped between passes for %s", badge, first[i].Name)
			}
		}
	}
}

func TestMetricTieBreakByName(t *testing.T) {
	svc := newLeaderboard(5)
	players := []domain.Player{
		ladderPlayer("zoe", 1000, 100),
		ladderPlayer("amy", 1000, 100),
	}

	rows := svc.ComputeRankings(players)

	if rows[0].Name != "amy" {
		t.Fatalf("elo tie should order by name, got %s first", rows[0].Name)
	}
	if rows[0].MetricRanks["kd"] != 1 || rows[1].MetricRanks["kd"] != 2 {
		t.Errorf("kd tie ranks = %d/%d, want 1/2",
			rows[0].MetricRanks["kd"], rows[1].MetricRanks["kd"])
	}
}
