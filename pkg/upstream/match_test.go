package upstream

import (
	"testing"

	"github.com/statline/matchup-sim/pkg/matchup"
)

func respTeams() []SimulationTeam {
	return []SimulationTeam{
		{Name: "Kansas City Chiefs", Abbreviation: "KC", Venue: "Home", Score: 27},
		{Name: "Buffalo Bills", Abbreviation: "BUF", Venue: "Away", Score: 24},
	}
}

func TestMatchTeam_FallbackChain(t *testing.T) {
	tests := []struct {
		name     string
		entries  []SimulationTeam
		want     Team
		venue    string
		position int
		wantName string
	}{
		{
			name:     "exact name wins over position",
			entries:  respTeams(),
			want:     Team{Name: "Buffalo Bills"},
			venue:    "Away",
			position: 0,
			wantName: "Buffalo Bills",
		},
		{
			name: "case-insensitive name",
			entries: []SimulationTeam{
				{Name: "KANSAS CITY CHIEFS", Venue: "Home"},
				{Name: "BUFFALO BILLS", Venue: "Away"},
			},
			want:     Team{Name: "Buffalo Bills"},
			venue:    "Away",
			position: 0,
			wantName: "BUFFALO BILLS",
		},
		{
			name: "exact abbreviation when names differ",
			entries: []SimulationTeam{
				{Name: "Chiefs", Abbreviation: "KC", Venue: "Home"},
				{Name: "Bills", Abbreviation: "BUF", Venue: "Away"},
			},
			want:     Team{Name: "Buffalo Bills", Abbreviation: "BUF"},
			venue:    "Away",
			position: 0,
			wantName: "Bills",
		},
		{
			name: "case-insensitive abbreviation",
			entries: []SimulationTeam{
				{Name: "Chiefs", Abbreviation: "kc", Venue: "Home"},
				{Name: "Bills", Abbreviation: "buf", Venue: "Away"},
			},
			want:     Team{Name: "Buffalo Bills", Abbreviation: "BUF"},
			venue:    "Away",
			position: 0,
			wantName: "Bills",
		},
		{
			name: "venue fallback when nothing else matches",
			entries: []SimulationTeam{
				{Name: "Home Side", Venue: "Home"},
				{Name: "Road Side", Venue: "Away"},
			},
			want:     Team{Name: "Buffalo Bills", Abbreviation: "BUF"},
			venue:    "Away",
			position: 0,
			wantName: "Road Side",
		},
		{
			name: "position fallback when venue absent",
			entries: []SimulationTeam{
				{Name: "First"},
				{Name: "Second"},
			},
			want:     Team{Name: "Buffalo Bills", Abbreviation: "BUF"},
			venue:    "Away",
			position: 1,
			wantName: "Second",
		},
		{
			name: "accented name matches case-insensitively",
			entries: []SimulationTeam{
				{Name: "Montréal Alouettes", Venue: "Home"},
				{Name: "Toronto Argonauts", Venue: "Away"},
			},
			want:     Team{Name: "Montreal Alouettes"},
			venue:    "Home",
			position: 1,
			wantName: "Montréal Alouettes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchTeam(tt.entries, tt.want, tt.venue, tt.position)
			if err != nil {
				t.Fatalf("MatchTeam() error: %v", err)
			}
			if got.Name != tt.wantName {
				t.Errorf("matched %q, want %q", got.Name, tt.wantName)
			}
		})
	}
}

func TestMatchTeam_NoMatch(t *testing.T) {
	_, err := MatchTeam(nil, Team{Name: "Ghost Team"}, "Away", 0)
	if err == nil {
		t.Fatal("expected error for empty entries")
	}
}

func TestBuildBaseline(t *testing.T) {
	grade := func(v float64) *float64 { return &v }

	resp := &SimulationResponse{
		Team: []SimulationTeam{
			{
				Name:                  "Kansas City Chiefs",
				Abbreviation:          "KC",
				Venue:                 "Home",
				Score:                 27,
				WinProbability:        62,
				OffensiveRating:       12,
				DefensiveRating:       8,
				OffensiveNumericGrade: grade(82),
				DefensiveNumericGrade: grade(78),
				HomeFieldAdvantage:    grade(1.5),
			},
			{
				Name:                  "Buffalo Bills",
				Abbreviation:          "BUF",
				Venue:                 "Away",
				Score:                 24,
				WinProbability:        38,
				OffensiveRating:       10,
				DefensiveRating:       5,
				OffensiveNumericGrade: grade(80),
				DefensiveNumericGrade: grade(75),
			},
		},
		OffensiveRange: grade(22),
		DefensiveRange: grade(18),
	}

	b, err := BuildBaseline(resp, matchup.SportNFL,
		Team{Name: "Buffalo Bills", Abbreviation: "BUF"},
		Team{Name: "Kansas City Chiefs", Abbreviation: "KC"})
	if err != nil {
		t.Fatalf("BuildBaseline() error: %v", err)
	}

	if b.AwayScore != 24 || b.HomeScore != 27 {
		t.Errorf("scores = (%v, %v), want (24, 27)", b.AwayScore, b.HomeScore)
	}
	if b.Away.OffensiveGrade != 80 || b.Home.DefensiveGrade != 78 {
		t.Errorf("grades not taken from matched entries")
	}
	if b.OffensiveRatingRange != 22 || b.DefensiveRatingRange != 18 {
		t.Errorf("ranges = (%v, %v), want (22, 18)", b.OffensiveRatingRange, b.DefensiveRatingRange)
	}
	if b.HomeFieldAdvantage != 1.5 {
		t.Errorf("HomeFieldAdvantage = %v, want 1.5", b.HomeFieldAdvantage)
	}
	if b.AwayWinProbability != 0.38 || b.HomeWinProbability != 0.62 {
		t.Errorf("probabilities = (%v, %v), want (0.38, 0.62)", b.AwayWinProbability, b.HomeWinProbability)
	}
}

func TestBuildBaseline_Defaults(t *testing.T) {
	resp := &SimulationResponse{
		Team: []SimulationTeam{
			{Name: "Away Side", Venue: "Away", Score: 70},
			{Name: "Home Side", Venue: "Home", Score: 75},
		},
	}

	b, err := BuildBaseline(resp, matchup.SportNBA,
		Team{Name: "Away Side"}, Team{Name: "Home Side"})
	if err != nil {
		t.Fatalf("BuildBaseline() error: %v", err)
	}

	if b.Away.OffensiveGrade != matchup.DefaultGrade || b.Home.DefensiveGrade != matchup.DefaultGrade {
		t.Errorf("missing grades should default to %v", matchup.DefaultGrade)
	}
	if b.Away.OffensiveRating != 0 {
		t.Errorf("missing ratings should default to 0, got %v", b.Away.OffensiveRating)
	}
	if b.OffensiveRatingRange != matchup.DefaultRatingRange {
		t.Errorf("OffensiveRatingRange = %v, want default %v", b.OffensiveRatingRange, matchup.DefaultRatingRange)
	}
	if b.HomeFieldAdvantage != matchup.DefaultHomeFieldAdvantage {
		t.Errorf("HomeFieldAdvantage = %v, want default %v", b.HomeFieldAdvantage, matchup.DefaultHomeFieldAdvantage)
	}
}

func TestBuildBaseline_SameEntryRejected(t *testing.T) {
	resp := &SimulationResponse{
		Team: []SimulationTeam{
			{Name: "Only Side", Venue: "Home"},
		},
	}

	_, err := BuildBaseline(resp, matchup.SportNFL,
		Team{Name: "Only Side"}, Team{Name: "Only Side"})
	if err == nil {
		t.Fatal("expected error when both sides match the same entry")
	}
}
