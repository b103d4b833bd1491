package service

import (
	"context"
	"fmt"

	"cs-ladder/internal/domain"
	"cs-ladder/internal/repository"

	"github.com/rs/zerolog"
)

// ProfileMatch is one row of a player's personal match history.
type ProfileMatch struct {
	MatchNum int     `json:"match_num"`
	MapName  string  `json:"map_name"`
	Score    string  `json:"score"`
	Result   string  `json:"result"`
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`
	Assists  int     `json:"assists"`
	ADR      float64 `json:"adr"`
	Rating   float64 `json:"rating"`
	MVP      int     `json:"mvp"`
	Date     string  `json:"date"`
}

// Profile is the full per-player stats view.
type Profile struct {
	Name     string `json:"name"`
	Elo      int    `json:"elo"`
	Tier     string `json:"tier"`
	RankIcon string `json:"rank_icon"`

	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Matches int `json:"matches"`
	MVPs    int `json:"mvps"`

	KD     float64 `json:"kd"`
	Rating float64 `json:"rating"`
	KPR    float64 `json:"kpr"`
	DPR    float64 `json:"dpr"`
	APR    float64 `json:"apr"`
	ADR    float64 `json:"adr"`
	KPM    float64 `json:"kpm"`
	DPM    float64 `json:"dpm"`
	APM    float64 `json:"apm"`

	StreakType   string         `json:"streak_type"`
	StreakCount  int            `json:"streak_count"`
	IsOnline     bool           `json:"is_online"`
	MatchHistory []ProfileMatch `json:"match_history"`
}

// EloPoint is one day's closing rating on the trend chart.
type EloPoint struct {
	Date string `json:"date"`
	Elo  int    `json:"elo"`
}

// ProfileService serves individual player views: the stats profile and the
// rating trend.
type ProfileService struct {
	playerRepo *repository.PlayerRepository
	matchRepo  *repository.MatchRepository
	eloRepo    *repository.EloHistoryRepository
	logger     zerolog.Logger
}

func NewProfileService(playerRepo *repository.PlayerRepository, matchRepo *repository.MatchRepository, eloRepo *repository.EloHistoryRepository, logger zerolog.Logger) *ProfileService {
	return &ProfileService{playerRepo: playerRepo, matchRepo: matchRepo, eloRepo: eloRepo, logger: logger}
}

// Profile loads one player's stats and personal match history, most recent
// match first.
func (s *ProfileService) Profile(ctx context.Context, name string) (*Profile, error) {
	player, err := s.playerRepo.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	history, err := s.matchRepo.ByPlayer(ctx, player.Name)
	if err != nil {
		return nil, err
	}

	tier := domain.Rank(player.Elo)
	profile := &Profile{
		Name:         player.Name,
		Elo:          player.Elo,
		Tier:         tier,
		RankIcon:     domain.RankIcon(tier),
		Wins:         player.Wins,
		Losses:       player.Losses,
		Matches:      player.Matches(),
		MVPs:         player.MVPs,
		KD:           round2(player.KD()),
		Rating:       round2(player.Rating()),
		KPR:          round3(player.KPR()),
		DPR:          round3(player.DPR()),
		APR:          round3(player.APR()),
		ADR:          round2(player.ADR()),
		KPM:          round2(player.KPM()),
		DPM:          round2(player.DPM()),
		APM:          round2(player.APM()),
		StreakType:   player.StreakType,
		StreakCount:  player.StreakCount,
		IsOnline:     player.IsOnline,
		MatchHistory: make([]ProfileMatch, 0, len(history)),
	}

	for i := len(history) - 1; i >= 0; i-- { // repo returns oldest first
		m := &history[i].Match
		line := &history[i].Line

		result := "loss"
		if (line.Team == 1 && m.WinningTeam == "Team 1") ||
			(line.Team == 2 && m.WinningTeam == "Team 2") {
			result = "win"
		}
		profile.MatchHistory = append(profile.MatchHistory, ProfileMatch{
			MatchNum: m.MatchNum,
			MapName:  m.MapName,
			Score:    teamScore(m, line.Team),
			Result:   result,
			Kills:    line.Kills,
			Deaths:   line.Deaths,
			Assists:  line.Assists,
			ADR:      round2(line.ADR),
			Rating:   round2(line.MatchRating()),
			MVP:      line.MVP,
			Date:     m.CreatedAt.UTC().Format("2006-01-02"),
		})
	}
	return profile, nil
}

// EloTrend returns the player's rating over time collapsed to one point per
// UTC day, keeping the last recorded value of each day.
func (s *ProfileService) EloTrend(ctx context.Context, name string) ([]EloPoint, error) {
	if _, err := s.playerRepo.Get(ctx, name); err != nil {
		return nil, err
	}
	records, err := s.eloRepo.ByName(ctx, name)
	if err != nil {
		return nil, err
	}

	points := make([]EloPoint, 0, len(records))
	for _, rec := range records { // oldest first, later entries win the day
		day := rec.CreatedAt.UTC().Format("2006-01-02")
		if n := len(points); n > 0 && points[n-1].Date == day {
			points[n-1].Elo = rec.Elo
			continue
		}
		points = append(points, EloPoint{Date: day, Elo: rec.Elo})
	}
	return points, nil
}

// teamScore renders the match score from the given team's perspective.
func teamScore(m *domain.Match, team int) string {
	if team == 2 {
		return fmt.Sprintf("%d-%d", m.Team2Score, m.Team1Score)
	}
	return fmt.Sprintf("%d-%d", m.Team1Score, m.Team2Score)
}
