// Package scan turns OCR text lines from a match scoreboard screenshot into
// structured player stat rows. It only parses text; recognition happens in an
// external service.
package scan

import (
	"regexp"
	"strconv"
	"strings"
)

// PlayerLine is one extracted scoreboard row.
type PlayerLine struct {
	Name string  `json:"name"`
	K    int     `json:"k"`
	D    int     `json:"d"`
	A    int     `json:"a"`
	ADR  float64 `json:"adr"`
	MVP  int     `json:"mvp"`
}

var (
	// K D A ADR MVP in sequence.
	statsFull = regexp.MustCompile(`(\d+)[\s|]+(\d+)[\s|]+(\d+)[\s|]+(\d+\.?\d*)[\s|]+(\d+)`)
	// More tolerant separators, MVP optional.
	statsLoose = regexp.MustCompile(`(\d+)[\s|,]+(\d+)[\s|,]+(\d+)[\s|,]+(\d+\.?\d*)[\s|,]*(\d*)`)
	// K D A ADR only.
	statsShort = regexp.MustCompile(`(\d+)[\s|]+(\d+)[\s|]+(\d+)[\s|]+(\d+\.?\d*)`)
)

// ParseScoreboard matches known player names against the recognized text and
// extracts the stat run that follows each name. Names are matched with a few
// variants (spaces stripped, last word only) because recognition mangles
// spacing. The first successful pattern wins; duplicates keep the first hit.
func ParseScoreboard(lines []string, knownNames []string) []PlayerLine {
	fullText := strings.Join(lines, " ")
	var players []PlayerLine

	for _, name := range knownNames {
		variants := nameVariants(name)
		for _, variant := range variants {
			idx := indexFold(fullText, variant)
			if idx < 0 {
				continue
			}

			end := idx + len(variant) + 200
			if end > len(fullText) {
				end = len(fullText)
			}
			// stats follow the name, so the search window starts at it
			context := fullText[idx:end]

			if row, ok := parseStats(context); ok {
				row.Name = name
				players = append(players, row)
			}
			break
		}
	}

	// Line-by-line fallback for names the context search missed. A player's
	// stats often land on the line after the name.
	if len(players) < 5 {
		found := make(map[string]bool, len(players))
		for _, p := range players {
			found[p.Name] = true
		}

		for i, line := range lines {
			clean := strings.TrimSpace(line)
			if len(clean) < 5 {
				continue
			}
			for _, name := range knownNames {
				if found[name] || !strings.Contains(strings.ToLower(clean), strings.ToLower(name)) {
					continue
				}
				search := clean
				for j := 1; j < 3 && i+j < len(lines); j++ {
					search += " " + strings.TrimSpace(lines[i+j])
				}
				if row, ok := parseStats(search); ok {
					row.Name = name
					players = append(players, row)
					found[name] = true
				}
				break
			}
		}
	}

	return dedupe(players)
}

func nameVariants(name string) []string {
	variants := []string{name, strings.ReplaceAll(name, " ", "")}
	if i := strings.LastIndex(name, " "); i >= 0 {
		variants = append(variants, name[i+1:])
	}
	return variants
}

func indexFold(haystack, needle string) int {
	return strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
}

func parseStats(text string) (PlayerLine, bool) {
	if m := statsFull.FindStringSubmatch(text); m != nil {
		return buildLine(m[1], m[2], m[3], m[4], m[5])
	}
	if m := statsLoose.FindStringSubmatch(text); m != nil {
		return buildLine(m[1], m[2], m[3], m[4], m[5])
	}
	if m := statsShort.FindStringSubmatch(text); m != nil {
		return buildLine(m[1], m[2], m[3], m[4], "")
	}
	return PlayerLine{}, false
}

func buildLine(k, d, a, adr, mvp string) (PlayerLine, bool) {
	row := PlayerLine{}
	var err error
	if row.K, err = strconv.Atoi(k); err != nil {
		return row, false
	}
	if row.D, err = strconv.Atoi(d); err != nil {
		return row, false
	}
	if row.A, err = strconv.Atoi(a); err != nil {
		return row, false
	}
	if row.ADR, err = strconv.ParseFloat(adr, 64); err != nil {
		return row, false
	}
	if mvp != "" {
		if row.MVP, err = strconv.Atoi(mvp); err != nil {
			return row, false
		}
	}
	return row, true
}

func dedupe(players []PlayerLine) []PlayerLine {
	seen := make(map[string]bool, len(players))
	out := players[:0]
	for _, p := range players {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out
}
