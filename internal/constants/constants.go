package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	TeamSize    = 5
	MatchSize   = 2 * TeamSize
	MinScore    = 0
	MaxScore    = 30
	MaxUploadMB = 10
)

// MapPool is the active rotation. Order matters: it is the tie-break when
// picking the least-played map for a proposal.
var MapPool = []string{
	"Dust2", "Inferno", "Mirage", "Vertigo", "Anubis", "Ancient", "Train", "Nuke",
}
