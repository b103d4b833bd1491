package service

import (
	"context"
	"fmt"
	"sort"

	"cs-ladder/internal/config"
	"cs-ladder/internal/domain"
	"cs-ladder/internal/repository"

	"github.com/rs/zerolog"
)

// badgeMetrics lists the stats that award champion and leader badges,
// in display order.
var badgeMetrics = []string{"rating", "kd", "kpr", "dpr", "apr", "adr"}

// PlayerRow is one rendered leaderboard entry.
type PlayerRow struct {
	Name     string `json:"name"`
	Elo      int    `json:"elo"`
	Rank     int    `json:"rank"`
	Tier     string `json:"tier"`
	RankIcon string `json:"rank_icon"`

	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Matches int `json:"matches"`

	KD     float64 `json:"kd"`
	Rating float64 `json:"rating"`
	KPR    float64 `json:"kpr"`
	DPR    float64 `json:"dpr"`
	APR    float64 `json:"apr"`
	ADR    float64 `json:"adr"`
	KPM    float64 `json:"kpm"`
	DPM    float64 `json:"dpm"`
	APM    float64 `json:"apm"`
	MVPs   int     `json:"mvps"`

	StreakType  string `json:"streak_type"`
	StreakCount int    `json:"streak_count"`
	IsOnline    bool   `json:"is_online"`
	IsTopThree  bool   `json:"is_top_three"`

	// MetricRanks holds the 1-based position per badge metric among
	// qualified players, 0 when unqualified.
	MetricRanks map[string]int `json:"metric_ranks"`

	// Badges holds the flat is_<metric>_champion / _leader /
	// _cold_champion / _cold_leader flags.
	Badges map[string]bool `json:"badges"`
}

// LeaderboardService ranks the full roster and awards performance badges.
type LeaderboardService struct {
	playerRepo *repository.PlayerRepository
	cfg        *config.Config
	logger     zerolog.Logger
}

func NewLeaderboardService(playerRepo *repository.PlayerRepository, cfg *config.Config, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{playerRepo: playerRepo, cfg: cfg, logger: logger}
}

// Leaderboard loads every player and returns the ranked, badged table.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]PlayerRow, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	return s.ComputeRankings(players), nil
}

// ComputeRankings renders rows for an already-loaded roster. Elo rank covers
// everyone; badge metrics only rank players with enough recorded matches.
func (s *LeaderboardService) ComputeRankings(players []domain.Player) []PlayerRow {
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Elo != players[j].Elo {
			return players[i].Elo > players[j].Elo
		}
		return players[i].Name < players[j].Name
	})

	rows := make([]PlayerRow, len(players))
	for i := range players {
		p := &players[i]
		tier := domain.Rank(p.Elo)
		rows[i] = PlayerRow{
			Name:        p.Name,
			Elo:         p.Elo,
			Rank:        i + 1,
			Tier:        tier,
			RankIcon:    domain.RankIcon(tier),
			Wins:        p.Wins,
			Losses:      p.Losses,
			Matches:     p.Matches(),
			KD:          round2(p.KD()),
			Rating:      round2(p.Rating()),
			KPR:         round3(p.KPR()),
			DPR:         round3(p.DPR()),
			APR:         round3(p.APR()),
			ADR:         round2(p.ADR()),
			KPM:         round2(p.KPM()),
			DPM:         round2(p.DPM()),
			APM:         round2(p.APM()),
			MVPs:        p.MVPs,
			StreakType:  p.StreakType,
			StreakCount: p.StreakCount,
			IsOnline:    p.IsOnline,
			MetricRanks: make(map[string]int, len(badgeMetrics)),
			Badges:      make(map[string]bool, len(badgeMetrics)*4),
		}
		for _, metric := range badgeMetrics {
			rows[i].Badges["is_"+metric+"_champion"] = false
			rows[i].Badges["is_"+metric+"_leader"] = false
			rows[i].Badges["is_"+metric+"_cold_champion"] = false
			rows[i].Badges["is_"+metric+"_cold_leader"] = false
		}
	}

	qualified := make([]int, 0, len(players))
	for i := range players {
		if players[i].Matches() >= s.cfg.MinBadgeMatches {
			qualified = append(qualified, i)
		}
	}

	for _, metric := range badgeMetrics {
		s.awardMetric(players, rows, qualified, metric)
	}

	// top-three highlight: a podium spot on any metric
	for i := range rows {
		for _, metric := range badgeMetrics {
			if r := rows[i].MetricRanks[metric]; r >= 1 && r <= 3 {
				rows[i].IsTopThree = true
				break
			}
		}
	}
	return rows
}

// awardMetric assigns the per-metric rank and the four badge flags for one
// metric over the qualified subset.
func (s *LeaderboardService) awardMetric(players []domain.Player, rows []PlayerRow, qualified []int, metric string) {
	ranked := make([]int, len(qualified))
	copy(ranked, qualified)
	sort.SliceStable(ranked, func(a, b int) bool {
		va, vb := metricValue(&players[ranked[a]], metric), metricValue(&players[ranked[b]], metric)
		if va != vb {
			return va > vb
		}
		return players[ranked[a]].Name < players[ranked[b]].Name
	})

	n := len(ranked)
	for pos, idx := range ranked {
		rows[idx].MetricRanks[metric] = pos + 1
		switch {
		case pos == 0:
			rows[idx].Badges["is_"+metric+"_champion"] = true
		case pos < 5:
			rows[idx].Badges["is_"+metric+"_leader"] = true
		}
		// cold badges mirror from the bottom of the ranking
		fromBottom := n - 1 - pos
		switch {
		case fromBottom == 0 && pos != 0:
			rows[idx].Badges["is_"+metric+"_cold_champion"] = true
		case fromBottom < 5 && pos >= 5:
			rows[idx].Badges["is_"+metric+"_cold_leader"] = true
		}
	}
}

func metricValue(p *domain.Player, metric string) float64 {
	switch metric {
	case "rating":
		return p.Rating()
	case "kd":
		return p.KD()
	case "kpr":
		return p.KPR()
	case "dpr":
		return p.DPR()
	case "apr":
		return p.APR()
	case "adr":
		return p.ADR()
	}
	return 0
}
