package service

import (
	"context"
	"fmt"

	"cs-ladder/internal/config"
	"cs-ladder/internal/domain"
	"cs-ladder/internal/repository"

	"github.com/rs/zerolog"
)

// MatchSummary is one entry in the all-matches listing.
type MatchSummary struct {
	MatchNum    int    `json:"match_num"`
	MapName     string `json:"map_name"`
	Team1Score  int    `json:"team1_score"`
	Team2Score  int    `json:"team2_score"`
	WinningTeam string `json:"winning_team"`
	TotalRounds int    `json:"total_rounds"`
	MVPName     string `json:"mvp_name"`
	CreatedAt   string `json:"created_at"`
}

// MatchLine is one player's rendered stat line in the match-details view.
type MatchLine struct {
	Name   string  `json:"name"`
	Kills  int     `json:"kills"`
	Deaths int     `json:"deaths"`
	Assists int    `json:"assists"`
	ADR    float64 `json:"adr"`
	KPR    float64 `json:"kpr"`
	Rating float64 `json:"rating"`
	MVP    int     `json:"mvp"`
}

// MatchDetails is the full breakdown of one recorded match.
type MatchDetails struct {
	Match      MatchSummary   `json:"match"`
	Team1Stats []MatchLine    `json:"team1_stats"`
	Team2Stats []MatchLine    `json:"team2_stats"`
	Metadata   map[string]any `json:"metadata"`
}

// HistoryService serves the recorded match history views.
type HistoryService struct {
	matchRepo *repository.MatchRepository
	cfg       *config.Config
	logger    zerolog.Logger
}

func NewHistoryService(matchRepo *repository.MatchRepository, cfg *config.Config, logger zerolog.Logger) *HistoryService {
	return &HistoryService{matchRepo: matchRepo, cfg: cfg, logger: logger}
}

// AllMatches returns one page of match summaries, newest first. A page size
// of zero falls back to the configured default.
func (s *HistoryService) AllMatches(ctx context.Context, page, pageSize int) ([]MatchSummary, int, error) {
	if pageSize <= 0 {
		pageSize = s.cfg.PageSize
	}

	matches, err := s.matchRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to page matches: %w", err)
	}
	total, err := s.matchRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count matches: %w", err)
	}

	summaries := make([]MatchSummary, len(matches))
	for i := range matches {
		summaries[i] = matchSummary(&matches[i])
	}
	return summaries, total, nil
}

// MatchDetails returns the breakdown for one match, both rosters sorted by
// kills within their team.
func (s *HistoryService) MatchDetails(ctx context.Context, matchNum int) (*MatchDetails, error) {
	match, lines, err := s.matchRepo.Get(ctx, matchNum)
	if err != nil {
		return nil, err
	}

	details := &MatchDetails{
		Match: matchSummary(match),
		Metadata: map[string]any{
			"winning_team": match.WinningTeam,
			"total_rounds": match.TotalRounds,
			"mvp_name":     match.MVPName,
		},
	}
	for i := range lines {
		line := &lines[i]
		rendered := MatchLine{
			Name:    line.Name,
			Kills:   line.Kills,
			Deaths:  line.Deaths,
			Assists: line.Assists,
			ADR:     round2(line.ADR),
			KPR:     round3(line.KPR(match.TotalRounds)),
			Rating:  round2(line.MatchRating()),
			MVP:     line.MVP,
		}
		if line.Team == 1 {
			details.Team1Stats = append(details.Team1Stats, rendered)
		} else {
			details.Team2Stats = append(details.Team2Stats, rendered)
		}
	}
	return details, nil
}

// MapStats returns the per-map aggregates, busiest map first.
func (s *HistoryService) MapStats(ctx context.Context) ([]domain.MapStat, error) {
	stats, err := s.matchRepo.MapStats(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].AvgRounds = round2(stats[i].AvgRounds)
	}
	return stats, nil
}

func matchSummary(m *domain.Match) MatchSummary {
	return MatchSummary{
		MatchNum:    m.MatchNum,
		MapName:     m.MapName,
		Team1Score:  m.Team1Score,
		Team2Score:  m.Team2Score,
		WinningTeam: m.WinningTeam,
		TotalRounds: m.TotalRounds,
		MVPName:     m.MVPName,
		CreatedAt:   m.CreatedAt.UTC().Format("2006-01-02 15:04"),
	}
}
