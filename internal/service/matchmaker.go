package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"cs-ladder/internal/config"
	"cs-ladder/internal/constants"
	"cs-ladder/internal/domain"
	"cs-ladder/internal/repository"

	"github.com/rs/zerolog"
)

// MatchmakerService forms balanced team proposals from the online pool and
// holds the single active proposal until it is submitted or reset.
type MatchmakerService struct {
	playerRepo *repository.PlayerRepository
	matchRepo  *repository.MatchRepository
	cfg        *config.Config
	logger     zerolog.Logger

	mu      sync.Mutex
	current *domain.MatchProposal
}

func NewMatchmakerService(playerRepo *repository.PlayerRepository, matchRepo *repository.MatchRepository, cfg *config.Config, logger zerolog.Logger) *MatchmakerService {
	return &MatchmakerService{playerRepo: playerRepo, matchRepo: matchRepo, cfg: cfg, logger: logger}
}

// ProposeMatch picks ten players from the online names, splits them into two
// teams with minimal average-ELO difference and computes the contingent
// rating transfer for either outcome.
func (s *MatchmakerService) ProposeMatch(ctx context.Context, onlineNames []string) (*domain.MatchProposal, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	players, err := s.playerRepo.ListByNames(ctx, dedupeNames(onlineNames))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve online players: %w", err)
	}
	if len(players) < constants.MatchSize {
		return nil, fmt.Errorf("%w: have %d, need %d",
			domain.ErrInsufficientPlayers, len(players), constants.MatchSize)
	}

	// ListByNames orders by elo desc, name asc, so the selection policy
	// (top ten by rating) is the head of the slice.
	selected := players[:constants.MatchSize]

	team1, team2 := balanceTeams(selected)

	avg1 := avgElo(team1)
	avg2 := avgElo(team2)
	e1 := expectedScore(avg1, avg2)
	e2 := expectedScore(avg2, avg1)

	mapName, err := s.pickMap(ctx)
	if err != nil {
		return nil, err
	}

	proposal := &domain.MatchProposal{
		Team1:     toProposalPlayers(team1),
		Team2:     toProposalPlayers(team2),
		MapName:   mapName,
		EloDiff:   int(math.Round(math.Abs(avg1 - avg2))),
		T1Gain:    winGain(s.cfg.EloKFactor, e1),
		T2Gain:    winGain(s.cfg.EloKFactor, e2),
		Command:   serverCommand(team1, team2),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.current = proposal
	s.mu.Unlock()

	s.logger.Info().
		Str("map", proposal.MapName).
		Int("elo_diff", proposal.EloDiff).
		Int("t1_gain", proposal.T1Gain).
		Int("t2_gain", proposal.T2Gain).
		Msg("match proposal created")

	return proposal, nil
}

// Current returns the active proposal, if any.
func (s *MatchmakerService) Current() (*domain.MatchProposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != nil
}

// Clear drops the active proposal.
func (s *MatchmakerService) Clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// balanceTeams splits ten players into two fives minimizing the difference
// of team average ELO. Players are considered in name order and the first
// player is pinned to team one, which halves the symmetric search space and
// makes ties deterministic: the first minimal split in enumeration order
// wins.
func balanceTeams(selected []domain.Player) ([]domain.Player, []domain.Player) {
	pool := make([]domain.Player, len(selected))
	copy(pool, selected)
	sort.Slice(pool, func(i, j int) bool { return pool[i].Name < pool[j].Name })

	rest := pool[1:]
	bestDiff := math.Inf(1)
	var bestMates []int

	// choose 4 of the remaining 9 to join pool[0]
	n := len(rest)
	for a := 0; a < n-3; a++ {
		for b := a + 1; b < n-2; b++ {
			for c := b + 1; c < n-1; c++ {
				for d := c + 1; d < n; d++ {
					sum1 := pool[0].Elo + rest[a].Elo + rest[b].Elo + rest[c].Elo + rest[d].Elo
					sum2 := 0
					for _, p := range pool {
						sum2 += p.Elo
					}
					sum2 -= sum1
					diff := math.Abs(float64(sum1)-float64(sum2)) / float64(constants.TeamSize)
					if diff < bestDiff {
						bestDiff = diff
						bestMates = []int{a, b, c, d}
					}
				}
			}
		}
	}

	mates := make(map[int]bool, 4)
	for _, i := range bestMates {
		mates[i] = true
	}

	team1 := []domain.Player{pool[0]}
	var team2 []domain.Player
	for i, p := range rest {
		if mates[i] {
			team1 = append(team1, p)
		} else {
			team2 = append(team2, p)
		}
	}
	return team1, team2
}

// pickMap chooses the pool map with the fewest recorded games, breaking
// ties by rotation order.
func (s *MatchmakerService) pickMap(ctx context.Context) (string, error) {
	counts, err := s.matchRepo.MapGameCounts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load map counts: %w", err)
	}

	best := constants.MapPool[0]
	for _, m := range constants.MapPool[1:] {
		if counts[m] < counts[best] {
			best = m
		}
	}
	return best, nil
}

func serverCommand(team1, team2 []domain.Player) string {
	var b strings.Builder
	b.WriteString("bot_kick\n")
	for i := 0; i < constants.TeamSize; i++ {
		fmt.Fprintf(&b, "bot_add_ct 3 %q\n", team1[i].Name)
		fmt.Fprintf(&b, "bot_add_t 3 %q\n", team2[i].Name)
	}
	return b.String()
}

func toProposalPlayers(team []domain.Player) []domain.ProposalPlayer {
	result := make([]domain.ProposalPlayer, len(team))
	for i, p := range team {
		result[i] = domain.ProposalPlayer{
			Name:     p.Name,
			Elo:      p.Elo,
			KD:       round2(p.KD()),
			RankIcon: domain.RankIcon(domain.Rank(p.Elo)),
		}
	}
	return result
}

func avgElo(team []domain.Player) float64 {
	sum := 0
	for _, p := range team {
		sum += p.Elo
	}
	return float64(sum) / float64(len(team))
}

func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(n))
	}
	return out
}
