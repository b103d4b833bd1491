package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"cs-ladder/internal/config"
	"cs-ladder/internal/constants"
	"cs-ladder/internal/domain"
	"cs-ladder/internal/repository"

	"github.com/rs/zerolog"
)

// PlayerResult is one submitted stat line for a roster member.
type PlayerResult struct {
	Name string  `json:"Name"`
	K    int     `json:"K"`
	D    int     `json:"D"`
	A    int     `json:"A"`
	ADR  float64 `json:"ADR"`
	MVP  int     `json:"MVP"`
}

// TopPlayer is a leaderboard head entry returned after a submission.
type TopPlayer struct {
	Name     string `json:"Name"`
	Elo      int    `json:"ELO"`
	RankIcon string `json:"rank_icon"`
}

// RatingService applies completed match results: it validates the submission
// against the proposal, transfers ELO between the teams, updates cumulative
// player counters and persists the match — all as one atomic unit.
type RatingService struct {
	db         *sql.DB
	playerRepo *repository.PlayerRepository
	matchRepo  *repository.MatchRepository
	eloRepo    *repository.EloHistoryRepository
	cfg        *config.Config
	logger     zerolog.Logger

	// serializes result application to avoid lost updates on counters
	mu sync.Mutex
}

func NewRatingService(sqlDB *sql.DB, playerRepo *repository.PlayerRepository, matchRepo *repository.MatchRepository, eloRepo *repository.EloHistoryRepository, cfg *config.Config, logger zerolog.Logger) *RatingService {
	return &RatingService{
		db:         sqlDB,
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		eloRepo:    eloRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// ApplyResult validates and records one completed match. On any validation
// failure nothing is persisted. Returns the updated top three for display.
func (s *RatingService) ApplyResult(ctx context.Context, proposal *domain.MatchProposal, team1, team2 []PlayerResult, winTeam string, team1Score, team2Score int, mapName string) ([]TopPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if proposal == nil {
		return nil, domain.Validationf("no active match proposal")
	}
	if err := validateSubmission(proposal, team1, team2, winTeam, team1Score, team2Score); err != nil {
		return nil, err
	}
	if mapName == "" {
		mapName = proposal.MapName
	}

	winnerGain := proposal.T1Gain
	if winTeam == "Team 2" {
		winnerGain = proposal.T2Gain
	}
	totalRounds := team1Score + team2Score

	match := &domain.Match{
		MapName:     mapName,
		Team1Score:  team1Score,
		Team2Score:  team2Score,
		WinningTeam: winTeam,
		TotalRounds: totalRounds,
		MVPName:     mvpName(team1, team2),
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "begin match transaction", Err: err}
	}
	defer tx.Rollback()

	matchNum, err := s.matchRepo.InsertTx(ctx, tx, match, matchLines(team1, team2))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "persist match", Err: err}
	}

	apply := func(results []PlayerResult, won bool) error {
		delta := winnerGain
		if !won {
			delta = -winnerGain
		}
		for _, row := range results {
			player, err := s.playerRepo.GetTx(ctx, tx, row.Name)
			if err != nil {
				return err
			}

			applyLine(player, row, won, totalRounds)
			player.Elo += delta

			if err := s.playerRepo.UpdateTx(ctx, tx, player); err != nil {
				return err
			}
			if err := s.eloRepo.InsertTx(ctx, tx, &domain.EloHistory{
				Name:      player.Name,
				MatchNum:  matchNum,
				Elo:       player.Elo,
				Delta:     delta,
				CreatedAt: match.CreatedAt,
			}); err != nil {
				return err
			}
		}
		return nil
	}

	if err := apply(team1, winTeam == "Team 1"); err != nil {
		return nil, &domain.PersistenceError{Op: "update team 1", Err: err}
	}
	if err := apply(team2, winTeam == "Team 2"); err != nil {
		return nil, &domain.PersistenceError{Op: "update team 2", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &domain.PersistenceError{Op: "commit match transaction", Err: err}
	}

	s.logger.Info().
		Int("match_num", matchNum).
		Str("map", mapName).
		Str("win_team", winTeam).
		Int("winner_gain", winnerGain).
		Msg("match result applied")

	return s.TopThree(ctx)
}

// TopThree returns the current leaderboard head.
func (s *RatingService) TopThree(ctx context.Context) ([]TopPlayer, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	if len(players) > 3 {
		players = players[:3]
	}
	top := make([]TopPlayer, len(players))
	for i, p := range players {
		top[i] = TopPlayer{
			Name:     p.Name,
			Elo:      p.Elo,
			RankIcon: domain.RankIcon(domain.Rank(p.Elo)),
		}
	}
	return top, nil
}

// applyLine folds one match line into a player's cumulative counters and
// advances the streak state.
func applyLine(p *domain.Player, row PlayerResult, won bool, totalRounds int) {
	if won {
		p.Wins++
	} else {
		p.Losses++
	}
	p.Kills += row.K
	p.Deaths += row.D
	p.Assists += row.A
	p.ADRTotal += row.ADR
	p.MVPs += row.MVP
	p.TotalRounds += totalRounds

	outcome := "loss"
	if won {
		outcome = "win"
	}
	if p.StreakType == outcome {
		p.StreakCount++
	} else {
		p.StreakType = outcome
		p.StreakCount = 1
	}
}

func validateSubmission(proposal *domain.MatchProposal, team1, team2 []PlayerResult, winTeam string, team1Score, team2Score int) error {
	if winTeam != "Team 1" && winTeam != "Team 2" {
		return domain.Validationf("invalid winning team %q", winTeam)
	}
	for _, score := range []int{team1Score, team2Score} {
		if score < constants.MinScore || score > constants.MaxScore {
			return domain.Validationf("score %d out of range [%d, %d]", score, constants.MinScore, constants.MaxScore)
		}
	}
	if err := validateRoster("team 1", proposal.Team1, team1); err != nil {
		return err
	}
	if err := validateRoster("team 2", proposal.Team2, team2); err != nil {
		return err
	}
	return nil
}

// validateRoster checks that the result rows cover exactly the proposed
// roster (case-insensitive) and that every stat is plausible.
func validateRoster(label string, roster []domain.ProposalPlayer, results []PlayerResult) error {
	if len(results) != len(roster) {
		return domain.Validationf("%s: got %d result rows, expected %d", label, len(results), len(roster))
	}

	expected := make(map[string]bool, len(roster))
	for _, p := range roster {
		expected[strings.ToLower(p.Name)] = true
	}

	seen := make(map[string]bool, len(results))
	for _, row := range results {
		key := strings.ToLower(strings.TrimSpace(row.Name))
		if !expected[key] {
			return domain.Validationf("%s: player %q is not on the proposed roster", label, row.Name)
		}
		if seen[key] {
			return domain.Validationf("%s: duplicate result row for %q", label, row.Name)
		}
		seen[key] = true

		if row.K < 0 || row.D < 0 || row.A < 0 || row.ADR < 0 {
			return domain.Validationf("%s: negative stat for %q", label, row.Name)
		}
		if row.MVP != 0 && row.MVP != 1 {
			return domain.Validationf("%s: MVP flag for %q must be 0 or 1", label, row.Name)
		}
	}
	return nil
}

// mvpName picks the MVP-flagged player, breaking ties by kill count then name.
func mvpName(team1, team2 []PlayerResult) string {
	var best *PlayerResult
	consider := func(rows []PlayerResult) {
		for i := range rows {
			row := &rows[i]
			if row.MVP != 1 {
				continue
			}
			if best == nil || row.K > best.K || (row.K == best.K && row.Name < best.Name) {
				best = row
			}
		}
	}
	consider(team1)
	consider(team2)
	if best == nil {
		return ""
	}
	return best.Name
}

func matchLines(team1, team2 []PlayerResult) []domain.MatchPlayer {
	lines := make([]domain.MatchPlayer, 0, len(team1)+len(team2))
	for _, row := range team1 {
		lines = append(lines, domain.MatchPlayer{
			Name: row.Name, Team: 1, Kills: row.K, Deaths: row.D,
			Assists: row.A, ADR: row.ADR, MVP: row.MVP,
		})
	}
	for _, row := range team2 {
		lines = append(lines, domain.MatchPlayer{
			Name: row.Name, Team: 2, Kills: row.K, Deaths: row.D,
			Assists: row.A, ADR: row.ADR, MVP: row.MVP,
		})
	}
	return lines
}
