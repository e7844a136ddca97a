// Package matchup provides the local re-simulation engine for matchup
// what-if analysis: rating projection, score recomputation, and
// spread-to-probability conversion for supported sports.
package matchup

// Sport identifies a supported sport code.
type Sport string

const (
	SportNFL               Sport = "nfl"
	SportNBA               Sport = "nba"
	SportCollegeFootball   Sport = "college-football"
	SportCollegeBasketball Sport = "college-basketball"
)

// Valid returns true for a supported sport code.
func (s Sport) Valid() bool {
	switch s {
	case SportNFL, SportNBA, SportCollegeFootball, SportCollegeBasketball:
		return true
	default:
		return false
	}
}

// IsFootball returns true for American football codes, which use
// football score rounding and a steeper spread sensitivity.
func (s Sport) IsFootball() bool {
	return s == SportNFL || s == SportCollegeFootball
}

// Grade scale constants. The UI exposes a 60-99 grade scale; the
// simulator operates on its own internal rating scale.
const (
	GradeMin     = 60.0
	GradeMax     = 99.0
	GradeSpan    = GradeMax - GradeMin
	DefaultGrade = 75.0
)

// Defaults applied when the upstream response omits a field.
const (
	DefaultRatingRange        = 20.0
	DefaultHomeFieldAdvantage = 1.25
)

// Spread sensitivity constants for the locally recomputed win
// probability. Football scoring is chunkier, so a point of spread
// carries more probability weight.
const (
	footballSpreadK   = 0.15
	basketballSpreadK = 0.13
)

// Win probabilities are clamped away from 0 and 1 so a blowout spread
// never displays as a certainty.
const (
	minWinProbability = 0.001
	maxWinProbability = 0.999
)

// RatingSnapshot holds one side's grade/rating anchor pair per axis,
// captured from the baseline simulation and immutable afterwards.
type RatingSnapshot struct {
	OffensiveGrade  float64 `json:"offensive_grade"`
	OffensiveRating float64 `json:"offensive_rating"`
	DefensiveGrade  float64 `json:"defensive_grade"`
	DefensiveRating float64 `json:"defensive_rating"`
}

// Baseline is the authoritative remote simulation result, captured
// exactly once per (sport, away, home) selection. It is replaced, never
// mutated, when the selection changes.
type Baseline struct {
	Sport Sport `json:"sport"`

	AwayScore float64 `json:"away_score"`
	HomeScore float64 `json:"home_score"`

	Away RatingSnapshot `json:"away"`
	Home RatingSnapshot `json:"home"`

	// Rating scale spans corresponding to the full 60-99 grade range.
	OffensiveRatingRange float64 `json:"offensive_rating_range"`
	DefensiveRatingRange float64 `json:"defensive_rating_range"`

	HomeFieldAdvantage float64 `json:"home_field_advantage"`

	// Win probabilities as reported by the remote engine (0-1). These
	// are displayed while no slider has been touched; the locally
	// recomputed path uses the logistic transform instead. The two are
	// intentionally not unified.
	AwayWinProbability float64 `json:"away_win_probability"`
	HomeWinProbability float64 `json:"home_win_probability"`
}

// Sliders returns the slider state matching the baseline grades.
func (b *Baseline) Sliders() SliderState {
	return SliderState{
		AwayOff: b.Away.OffensiveGrade,
		AwayDef: b.Away.DefensiveGrade,
		HomeOff: b.Home.OffensiveGrade,
		HomeDef: b.Home.DefensiveGrade,
	}
}

// SliderState holds the four live grade values the user controls.
type SliderState struct {
	AwayOff float64 `json:"away_off"`
	AwayDef float64 `json:"away_def"`
	HomeOff float64 `json:"home_off"`
	HomeDef float64 `json:"home_def"`
}

// DefaultSliders returns the slider state used before a matchup is
// selected.
func DefaultSliders() SliderState {
	return SliderState{
		AwayOff: DefaultGrade,
		AwayDef: DefaultGrade,
		HomeOff: DefaultGrade,
		HomeDef: DefaultGrade,
	}
}

// Clamped returns a copy with every grade constrained to [60, 99].
func (s SliderState) Clamped() SliderState {
	return SliderState{
		AwayOff: clampGrade(s.AwayOff),
		AwayDef: clampGrade(s.AwayDef),
		HomeOff: clampGrade(s.HomeOff),
		HomeDef: clampGrade(s.HomeDef),
	}
}

func clampGrade(g float64) float64 {
	if g < GradeMin {
		return GradeMin
	}
	if g > GradeMax {
		return GradeMax
	}
	return g
}

// Result is the derived simulation output, recomputed on every slider
// change.
type Result struct {
	AwayScore float64 `json:"away_score"`
	HomeScore float64 `json:"home_score"`

	Spread float64 `json:"spread"` // home minus away
	Total  float64 `json:"total"`

	AwayWinProbability float64 `json:"away_win_probability"`
	HomeWinProbability float64 `json:"home_win_probability"`
}
