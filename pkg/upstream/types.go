// Package upstream is a client for the third-party matchup simulation
// API: team catalog lookup, baseline simulation requests, and
// conversion of simulation responses into engine baselines.
package upstream

import "github.com/statline/matchup-sim/pkg/matchup"

// Team is a catalog entry from GET /teams.
type Team struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
}

// SimulationRequest is the body of POST /simulation.
type SimulationRequest struct {
	Sport      matchup.Sport `json:"sport"`
	AwayTeamID string        `json:"awayTeamId"`
	HomeTeamID string        `json:"homeTeamId"`
}

// SimulationTeam is one side's entry in a simulation response. Grade,
// range, and home-field fields are pointers because the upstream API
// omits them for some sports; defaults are applied in BuildBaseline.
type SimulationTeam struct {
	Name           string  `json:"name"`
	Abbreviation   string  `json:"abbreviation"`
	Venue          string  `json:"venue"` // "Away" or "Home"
	Score          float64 `json:"score"`
	WinProbability float64 `json:"winProbability"` // percentage, 0-100

	OffensiveRating       float64  `json:"offensiveRating"`
	DefensiveRating       float64  `json:"defensiveRating"`
	OffensiveNumericGrade *float64 `json:"offensiveNumericGrade"`
	DefensiveNumericGrade *float64 `json:"defensiveNumericGrade"`

	HomeFieldAdvantage *float64 `json:"homeFieldAdvantage"`
}

// SimulationOutcome is the aggregate block of a simulation response.
type SimulationOutcome struct {
	PointSpread    float64 `json:"pointSpread"`
	TotalPoints    float64 `json:"totalPoints"`
	WinProbability float64 `json:"winProbability"`
}

// SimulationResponse is the full POST /simulation response. The team
// array is not guaranteed to be ordered away-then-home; consumers must
// go through MatchTeam.
type SimulationResponse struct {
	Team    []SimulationTeam  `json:"team"`
	Outcome SimulationOutcome `json:"outcome"`

	OffensiveRange *float64 `json:"offensiveRange"`
	DefensiveRange *float64 `json:"defensiveRange"`
}
