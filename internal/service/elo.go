package service

import "math"

// expectedScore is the standard ELO win expectancy for a side with average
// rating ownAvg against oppAvg.
func expectedScore(ownAvg, oppAvg float64) float64 {
	return 1 / (1 + math.Pow(10, (oppAvg-ownAvg)/400))
}

// winGain is the ELO a team stands to gain if it wins, given its win
// expectancy. The underdog gains more than the favorite; equal sides split
// the K-factor.
func winGain(k int, expected float64) int {
	return int(float64(k) * (1 - expected))
}
