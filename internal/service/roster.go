package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cs-ladder/internal/config"
	"cs-ladder/internal/domain"
	"cs-ladder/internal/repository"

	"github.com/rs/zerolog"
)

// RosterService owns roster lifecycle: first-run seeding from a CSV file and
// the full ladder reset.
type RosterService struct {
	playerRepo *repository.PlayerRepository
	matchRepo  *repository.MatchRepository
	eloRepo    *repository.EloHistoryRepository
	cfg        *config.Config
	logger     zerolog.Logger
}

func NewRosterService(playerRepo *repository.PlayerRepository, matchRepo *repository.MatchRepository, eloRepo *repository.EloHistoryRepository, cfg *config.Config, logger zerolog.Logger) *RosterService {
	return &RosterService{
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		eloRepo:    eloRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// SeedIfEmpty loads the roster CSV into an empty players table. Rows are
// `name[,elo]`; a header row with a non-numeric elo column is skipped.
func (s *RosterService) SeedIfEmpty(ctx context.Context) error {
	if s.cfg.SeedPath == "" {
		return nil
	}
	count, err := s.playerRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to check roster: %w", err)
	}
	if count > 0 {
		return nil
	}

	f, err := os.Open(s.cfg.SeedPath)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	seeded := 0
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}

		elo := s.cfg.StartingElo
		if len(record) > 1 && strings.TrimSpace(record[1]) != "" {
			parsed, err := strconv.Atoi(strings.TrimSpace(record[1]))
			if err != nil {
				if seeded == 0 {
					continue // header row
				}
				return fmt.Errorf("invalid elo for %q in seed file: %w", name, err)
			}
			elo = parsed
		}

		if err := s.playerRepo.Create(ctx, &domain.Player{Name: name, Elo: elo}); err != nil {
			return fmt.Errorf("failed to seed player %q: %w", name, err)
		}
		seeded++
	}

	s.logger.Info().Int("players", seeded).Str("path", s.cfg.SeedPath).Msg("roster seeded")
	return nil
}

// Reset wipes the match history and rating trail and returns every player to
// the configured baseline.
func (s *RosterService) Reset(ctx context.Context) error {
	if err := s.matchRepo.DeleteAll(ctx); err != nil {
		return &domain.PersistenceError{Op: "reset matches", Err: err}
	}
	if err := s.eloRepo.DeleteAll(ctx); err != nil {
		return &domain.PersistenceError{Op: "reset elo history", Err: err}
	}
	if err := s.playerRepo.ResetAll(ctx, s.cfg.StartingElo); err != nil {
		return &domain.PersistenceError{Op: "reset players", Err: err}
	}
	s.logger.Info().Msg("ladder reset to baseline")
	return nil
}
