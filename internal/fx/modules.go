package fx

import (
	"cs-ladder/internal/api"
	"cs-ladder/internal/config"
	"cs-ladder/internal/database"
	"cs-ladder/internal/logger"
	"cs-ladder/internal/repository"
	"cs-ladder/internal/server"
	"cs-ladder/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewEloHistoryRepository),
	// api clients
	fx.Provide(api.NewPresenceClient),
	fx.Provide(api.NewOCRClient),
	// svc
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(service.NewMatchmakerService),
	fx.Provide(service.NewRatingService),
	fx.Provide(service.NewHistoryService),
	fx.Provide(service.NewRecordsService),
	fx.Provide(service.NewProfileService),
	fx.Provide(service.NewPresenceService),
	fx.Provide(service.NewRosterService),
	fx.Provide(service.NewScanService),
	// server
	fx.Provide(server.NewLadderServer),
)
