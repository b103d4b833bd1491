package domain

import (
	"time"
)

// Player is the canonical ladder record for one player. Counters are
// cumulative across all recorded matches; rates are derived, never stored.
type Player struct {
	Name        string
	Elo         int
	Wins        int
	Losses      int
	Kills       int
	Deaths      int
	Assists     int
	ADRTotal    float64 // sum of per-match ADR values
	MVPs        int
	TotalRounds int    // rounds played across all matches
	StreakType  string // "win", "loss" or "none"
	StreakCount int
	IsOnline    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Player) Matches() int {
	return p.Wins + p.Losses
}

// KD divides by at least one death so fresh players don't blow up the table.
func (p *Player) KD() float64 {
	d := p.Deaths
	if d < 1 {
		d = 1
	}
	return float64(p.Kills) / float64(d)
}

func (p *Player) KPR() float64 {
	if p.TotalRounds == 0 {
		return 0
	}
	return float64(p.Kills) / float64(p.TotalRounds)
}

func (p *Player) DPR() float64 {
	if p.TotalRounds == 0 {
		return 0
	}
	return float64(p.Deaths) / float64(p.TotalRounds)
}

func (p *Player) APR() float64 {
	if p.TotalRounds == 0 {
		return 0
	}
	return float64(p.Assists) / float64(p.TotalRounds)
}

// ADR is the running average of per-match ADR.
func (p *Player) ADR() float64 {
	if p.Matches() == 0 {
		return 0
	}
	return p.ADRTotal / float64(p.Matches())
}

func (p *Player) KPM() float64 {
	if p.Matches() == 0 {
		return 0
	}
	return float64(p.Kills) / float64(p.Matches())
}

func (p *Player) DPM() float64 {
	if p.Matches() == 0 {
		return 0
	}
	return float64(p.Deaths) / float64(p.Matches())
}

func (p *Player) APM() float64 {
	if p.Matches() == 0 {
		return 0
	}
	return float64(p.Assists) / float64(p.Matches())
}

// Rating is the dashboard composite shown on the leaderboard.
func (p *Player) Rating() float64 {
	return 0.28*p.KD() + 0.02*p.KPM() + 0.006*p.APM() + 0.0058*p.ADR()
}

// Match is an immutable record of a completed match.
type Match struct {
	MatchNum    int
	MapName     string
	Team1Score  int
	Team2Score  int
	WinningTeam string // "Team 1" or "Team 2"
	TotalRounds int
	MVPName     string
	CreatedAt   time.Time
}

// MatchPlayer is one player's stat line within a match.
type MatchPlayer struct {
	MatchNum int
	Name     string
	Team     int // 1 or 2
	Kills    int
	Deaths   int
	Assists  int
	ADR      float64
	MVP      int // 0 or 1
}

// MatchRating is the per-match performance composite, used for
// single-match records.
func (mp *MatchPlayer) MatchRating() float64 {
	kd := float64(mp.Kills) / (float64(mp.Deaths) + 0.001)
	return 0.65*kd + 0.024*float64(mp.Kills) + 0.016*float64(mp.Assists) -
		0.025*float64(mp.Deaths) + 0.0035*mp.ADR
}

// KPR is this line's kills per round for the given match length.
func (mp *MatchPlayer) KPR(totalRounds int) float64 {
	if totalRounds == 0 {
		return 0
	}
	return float64(mp.Kills) / float64(totalRounds)
}

// EloHistory is one rating change for one player.
type EloHistory struct {
	ID        string // nanoid
	Name      string
	MatchNum  int
	Elo       int // rating after the change
	Delta     int
	CreatedAt time.Time
}

// ProposalPlayer is a roster entry on a proposed team.
type ProposalPlayer struct {
	Name     string  `json:"name"`
	Elo      int     `json:"elo"`
	KD       float64 `json:"kd"`
	RankIcon string  `json:"rank_icon"`
}

// MatchProposal is the ephemeral balanced-team suggestion. It exists only
// between creation and submission (or reset) and is never persisted.
type MatchProposal struct {
	Team1     []ProposalPlayer `json:"team_1"`
	Team2     []ProposalPlayer `json:"team_2"`
	MapName   string           `json:"map"`
	EloDiff   int              `json:"elo_diff"`
	T1Gain    int              `json:"t1_gain"`
	T2Gain    int              `json:"t2_gain"`
	Command   string           `json:"command"`
	CreatedAt time.Time        `json:"-"`
}

// MapStat is the per-map aggregate for the map statistics view.
type MapStat struct {
	MapName     string  `json:"map_name"`
	NumGames    int     `json:"num_games"`
	TotalRounds int     `json:"total_rounds"`
	AvgRounds   float64 `json:"avg_rounds"`
}
