package service

import (
	"context"
	"fmt"

	"cs-ladder/internal/domain"
	"cs-ladder/internal/repository"

	"github.com/rs/zerolog"
)

// MatchRecord is a whole-match extremal entry.
type MatchRecord struct {
	MatchNum    int    `json:"match_num"`
	MapName     string `json:"map_name"`
	TotalRounds int    `json:"total_rounds"`
	Score       string `json:"score"`
	Date        string `json:"date"`
}

// LineRecord is a single-match player-stat extremal entry.
type LineRecord struct {
	Name     string  `json:"name"`
	MatchNum int     `json:"match_num"`
	MapName  string  `json:"map_name"`
	Value    float64 `json:"value"`
}

// Records is the full all-time record board.
type Records struct {
	LongestMatch  *MatchRecord `json:"longest_match"`
	ShortestMatch *MatchRecord `json:"shortest_match"`

	HighestKills  *LineRecord `json:"highest_kills_single_match"`
	HighestDeaths *LineRecord `json:"highest_deaths_single_match"`
	HighestRating *LineRecord `json:"highest_rating_single_match"`
	HighestKPR    *LineRecord `json:"highest_kpr_single_match"`
	HighestADR    *LineRecord `json:"highest_adr_single_match"`
	LowestKPR     *LineRecord `json:"lowest_kpr_single_match"`
	LowestRating  *LineRecord `json:"lowest_rating_single_match"`
}

// RecordsService derives the all-time record board from the full
// match history.
type RecordsService struct {
	matchRepo *repository.MatchRepository
	logger    zerolog.Logger
}

func NewRecordsService(matchRepo *repository.MatchRepository, logger zerolog.Logger) *RecordsService {
	return &RecordsService{matchRepo: matchRepo, logger: logger}
}

// ComputeRecords rescans every recorded match. Rows arrive in ascending
// match order and comparisons are strict, so ties keep the earliest match.
func (s *RecordsService) ComputeRecords(ctx context.Context) (*Records, error) {
	matches, err := s.matchRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	lines, err := s.matchRepo.AllLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load match lines: %w", err)
	}

	rec := &Records{}

	for i := len(matches) - 1; i >= 0; i-- { // matches are newest first
		m := &matches[i]
		if rec.LongestMatch == nil || m.TotalRounds > rec.LongestMatch.TotalRounds {
			rec.LongestMatch = matchRecord(m)
		}
		if rec.ShortestMatch == nil || m.TotalRounds < rec.ShortestMatch.TotalRounds {
			rec.ShortestMatch = matchRecord(m)
		}
	}

	for i := range lines {
		m := &lines[i].Match
		line := &lines[i].Line

		maxRecord(&rec.HighestKills, line.Name, m, float64(line.Kills))
		maxRecord(&rec.HighestDeaths, line.Name, m, float64(line.Deaths))
		maxRecord(&rec.HighestRating, line.Name, m, line.MatchRating())
		maxRecord(&rec.HighestKPR, line.Name, m, line.KPR(m.TotalRounds))
		maxRecord(&rec.HighestADR, line.Name, m, line.ADR)
		minRecord(&rec.LowestKPR, line.Name, m, line.KPR(m.TotalRounds))
		minRecord(&rec.LowestRating, line.Name, m, line.MatchRating())
	}

	return rec, nil
}

func matchRecord(m *domain.Match) *MatchRecord {
	return &MatchRecord{
		MatchNum:    m.MatchNum,
		MapName:     m.MapName,
		TotalRounds: m.TotalRounds,
		Score:       fmt.Sprintf("%d-%d", m.Team1Score, m.Team2Score),
		Date:        m.CreatedAt.UTC().Format("2006-01-02"),
	}
}

func maxRecord(slot **LineRecord, name string, m *domain.Match, value float64) {
	if *slot == nil || value > (*slot).Value {
		*slot = &LineRecord{Name: name, MatchNum: m.MatchNum, MapName: m.MapName, Value: value}
	}
}

func minRecord(slot **LineRecord, name string, m *domain.Match, value float64) {
	if *slot == nil || value < (*slot).Value {
		*slot = &LineRecord{Name: name, MatchNum: m.MatchNum, MapName: m.MapName, Value: value}
	}
}
