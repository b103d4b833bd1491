package domain

// Rank buckets an ELO value into the ladder's tier names.
func Rank(elo int) string {
	switch {
	case elo < 1000:
		return "silver"
	case elo < 1100:
		return "gold"
	case elo < 1300:
		return "diamond"
	case elo < 1500:
		return "gosu"
	default:
		return "worthy"
	}
}

// RankIcon is the dashboard asset path for a tier.
func RankIcon(rank string) string {
	return "assets/logos/" + rank + ".svg"
}
