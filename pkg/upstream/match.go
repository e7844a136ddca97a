package upstream

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/statline/matchup-sim/pkg/matchup"
)

// matchRule is one step of the team matching fallback chain. It returns
// the index of the matched entry, or -1.
type matchRule struct {
	name string
	fn   func(entries []SimulationTeam, want Team, venue string, position int) int
}

// matchRules is the ordered fallback chain for locating a selected team
// inside a simulation response. The upstream API does not guarantee
// entry ordering, so matching degrades from exact identity down to raw
// array position.
var matchRules = []matchRule{
	{"exact name", func(entries []SimulationTeam, want Team, _ string, _ int) int {
		for i, e := range entries {
			if e.Name == want.Name {
				return i
			}
		}
		return -1
	}},
	{"case-insensitive name", func(entries []SimulationTeam, want Team, _ string, _ int) int {
		wantNorm := normalizeName(want.Name)
		for i, e := range entries {
			if normalizeName(e.Name) == wantNorm {
				return i
			}
		}
		return -1
	}},
	{"exact abbreviation", func(entries []SimulationTeam, want Team, _ string, _ int) int {
		if want.Abbreviation == "" {
			return -1
		}
		for i, e := range entries {
			if e.Abbreviation != "" && e.Abbreviation == want.Abbreviation {
				return i
			}
		}
		return -1
	}},
	{"case-insensitive abbreviation", func(entries []SimulationTeam, want Team, _ string, _ int) int {
		if want.Abbreviation == "" {
			return -1
		}
		for i, e := range entries {
			if e.Abbreviation != "" && strings.EqualFold(e.Abbreviation, want.Abbreviation) {
				return i
			}
		}
		return -1
	}},
	{"venue", func(entries []SimulationTeam, _ Team, venue string, _ int) int {
		for i, e := range entries {
			if strings.EqualFold(e.Venue, venue) {
				return i
			}
		}
		return -1
	}},
	{"position", func(entries []SimulationTeam, _ Team, _ string, position int) int {
		if position >= 0 && position < len(entries) {
			return position
		}
		return -1
	}},
}

// MatchTeam locates the response entry for a selected team using the
// ordered fallback chain: exact name, case-insensitive name, exact
// abbreviation, case-insensitive abbreviation, venue field, array
// position. The first rule that succeeds wins.
func MatchTeam(entries []SimulationTeam, want Team, venue string, position int) (*SimulationTeam, error) {
	for _, rule := range matchRules {
		if i := rule.fn(entries, want, venue, position); i >= 0 {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("no response entry matches team %q (venue %s)", want.Name, venue)
}

// normalizeName lowercases a team name, strips accents, and folds
// whitespace so that case-insensitive matching survives upstream
// formatting quirks.
func normalizeName(name string) string {
	name = strings.ToLower(name)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, name)

	return strings.Join(strings.Fields(name), " ")
}

// BuildBaseline converts a simulation response into an engine baseline
// for the selected away/home pair. Missing grades default to 75,
// missing rating ranges to 20, and missing home-field advantage to
// 1.25; ratings absent from the response decode as 0.
func BuildBaseline(resp *SimulationResponse, sport matchup.Sport, away, home Team) (*matchup.Baseline, error) {
	awayEntry, err := MatchTeam(resp.Team, away, "Away", 0)
	if err != nil {
		return nil, fmt.Errorf("away team: %w", err)
	}
	homeEntry, err := MatchTeam(resp.Team, home, "Home", 1)
	if err != nil {
		return nil, fmt.Errorf("home team: %w", err)
	}
	if awayEntry == homeEntry {
		return nil, fmt.Errorf("away and home matched the same response entry")
	}

	b := &matchup.Baseline{
		Sport:                sport,
		AwayScore:            awayEntry.Score,
		HomeScore:            homeEntry.Score,
		Away:                 snapshotFrom(awayEntry),
		Home:                 snapshotFrom(homeEntry),
		OffensiveRatingRange: floatOrDefault(resp.OffensiveRange, matchup.DefaultRatingRange),
		DefensiveRatingRange: floatOrDefault(resp.DefensiveRange, matchup.DefaultRatingRange),
		HomeFieldAdvantage:   matchup.DefaultHomeFieldAdvantage,
		AwayWinProbability:   awayEntry.WinProbability / 100,
		HomeWinProbability:   homeEntry.WinProbability / 100,
	}

	if homeEntry.HomeFieldAdvantage != nil {
		b.HomeFieldAdvantage = *homeEntry.HomeFieldAdvantage
	} else if awayEntry.HomeFieldAdvantage != nil {
		b.HomeFieldAdvantage = *awayEntry.HomeFieldAdvantage
	}

	return b, nil
}

func snapshotFrom(e *SimulationTeam) matchup.RatingSnapshot {
	return matchup.RatingSnapshot{
		OffensiveGrade:  floatOrDefault(e.OffensiveNumericGrade, matchup.DefaultGrade),
		OffensiveRating: e.OffensiveRating,
		DefensiveGrade:  floatOrDefault(e.DefensiveNumericGrade, matchup.DefaultGrade),
		DefensiveRating: e.DefensiveRating,
	}
}

func floatOrDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
