package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statline/matchup-sim/pkg/matchup"
	"github.com/statline/matchup-sim/pkg/upstream"
)

// fakeClient is an in-memory UpstreamClient with per-call hooks.
type fakeClient struct {
	teams       []upstream.Team
	teamsErr    error
	resp        *upstream.SimulationResponse
	simErr      error
	simCalls    int
	beforeReply func(c *fakeClient) // runs inside Simulate, before returning
}

func (c *fakeClient) ListTeams(ctx context.Context, sport matchup.Sport) ([]upstream.Team, error) {
	if c.teamsErr != nil {
		return nil, c.teamsErr
	}
	return c.teams, nil
}

func (c *fakeClient) Simulate(ctx context.Context, req upstream.SimulationRequest) (*upstream.SimulationResponse, error) {
	c.simCalls++
	if c.beforeReply != nil {
		hook := c.beforeReply
		c.beforeReply = nil
		hook(c)
	}
	if c.simErr != nil {
		return nil, c.simErr
	}
	return c.resp, nil
}

func grade(v float64) *float64 { return &v }

func nflResponse() *upstream.SimulationResponse {
	return &upstream.SimulationResponse{
		Team: []upstream.SimulationTeam{
			{
				Name: "Buffalo Bills", Abbreviation: "BUF", Venue: "Away",
				Score: 24, WinProbability: 38,
				OffensiveRating: 10, DefensiveRating: 5,
				OffensiveNumericGrade: grade(80), DefensiveNumericGrade: grade(75),
			},
			{
				Name: "Kansas City Chiefs", Abbreviation: "KC", Venue: "Home",
				Score: 27, WinProbability: 62,
				OffensiveRating: 12, DefensiveRating: 8,
				OffensiveNumericGrade: grade(82), DefensiveNumericGrade: grade(78),
			},
		},
	}
}

func newTestSession(t *testing.T, client *fakeClient) *Session {
	t.Helper()

	if client.teams == nil {
		client.teams = []upstream.Team{
			{ID: "buf", Name: "Buffalo Bills", Abbreviation: "BUF"},
			{ID: "kc", Name: "Kansas City Chiefs", Abbreviation: "KC"},
			{ID: "phi", Name: "Philadelphia Eagles", Abbreviation: "PHI"},
		}
	}
	if client.resp == nil {
		client.resp = nflResponse()
	}

	s := New(client)
	_, err := s.Teams(context.Background(), matchup.SportNFL)
	require.NoError(t, err)
	return s
}

func nflSelection() Selection {
	return Selection{Sport: matchup.SportNFL, AwayTeamID: "buf", HomeTeamID: "kc"}
}

func TestSession_SelectMatchupCapturesBaseline(t *testing.T) {
	client := &fakeClient{}
	s := newTestSession(t, client)

	res, err := s.SelectMatchup(context.Background(), nflSelection())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 24.0, res.AwayScore)
	assert.Equal(t, 27.0, res.HomeScore)
	assert.Equal(t, 0.62, res.HomeWinProbability)

	b := s.Baseline()
	require.NotNil(t, b)
	assert.Equal(t, b.Sliders(), s.Sliders(), "sliders snap to baseline grades")
}

func TestSession_RepeatSelectionReusesBaseline(t *testing.T) {
	client := &fakeClient{}
	s := newTestSession(t, client)

	_, err := s.SelectMatchup(context.Background(), nflSelection())
	require.NoError(t, err)
	_, err = s.SelectMatchup(context.Background(), nflSelection())
	require.NoError(t, err)

	assert.Equal(t, 1, client.simCalls, "identical tuple must not refetch")
}

func TestSession_SelectionChangeDiscardsBaseline(t *testing.T) {
	client := &fakeClient{}
	s := newTestSession(t, client)

	_, err := s.SelectMatchup(context.Background(), nflSelection())
	require.NoError(t, err)

	changed := nflSelection()
	changed.AwayTeamID = ""
	_, err = s.SelectMatchup(context.Background(), changed)
	require.NoError(t, err)

	assert.Nil(t, s.Baseline(), "incomplete selection discards baseline")
	assert.Equal(t, matchup.DefaultSliders(), s.Sliders())
	_, err = s.SetSliders(matchup.DefaultSliders())
	assert.ErrorIs(t, err, ErrNoBaseline)
}

func TestSession_FetchFailureLeavesCleanState(t *testing.T) {
	client := &fakeClient{}
	s := newTestSession(t, client)

	_, err := s.SelectMatchup(context.Background(), nflSelection())
	require.NoError(t, err)
	require.NotNil(t, s.Baseline())

	// A failed fetch for a new tuple must not leave the session with a
	// half-applied update: the old baseline is gone (tuple changed) but
	// no stale baseline is installed either.
	client.simErr = errors.New("boom")
	changed := nflSelection()
	changed.HomeTeamID = "phi"
	_, err = s.SelectMatchup(context.Background(), changed)
	require.Error(t, err)
	assert.Nil(t, s.Baseline())
	assert.Equal(t, changed, s.Selection())
}

func TestSession_TeamsFailureLeavesSelectionIntact(t *testing.T) {
	client := &fakeClient{}
	s := newTestSession(t, client)

	_, err := s.SelectMatchup(context.Background(), nflSelection())
	require.NoError(t, err)

	client.teamsErr = errors.New("catalog down")
	_, err = s.Teams(context.Background(), matchup.SportNFL)
	require.Error(t, err)

	assert.Equal(t, nflSelection(), s.Selection())
	assert.NotNil(t, s.Baseline())
}

func TestSession_StaleFetchDropped(t *testing.T) {
	client := &fakeClient{}
	s := newTestSession(t, client)

	newer := nflSelection()
	newer.HomeTeamID = "phi"

	// While the first fetch is outstanding, the selection moves on.
	client.beforeReply = func(c *fakeClient) {
		_, err := s.SelectMatchup(context.Background(), newer)
		require.NoError(t, err)
	}

	_, err := s.SelectMatchup(context.Background(), nflSelection())
	assert.ErrorIs(t, err, ErrStaleSelection)

	assert.Equal(t, newer, s.Selection(), "newer selection wins")
	require.NotNil(t, s.Baseline())
}

func TestSession_SetSlidersRecomputes(t *testing.T) {
	client := &fakeClient{}
	s := newTestSession(t, client)

	var published []matchup.Result
	s.OnResult(func(r matchup.Result) { published = append(published, r) })

	_, err := s.SelectMatchup(context.Background(), nflSelection())
	require.NoError(t, err)
	require.Len(t, published, 1)

	sliders := s.Sliders()
	sliders.AwayOff = 90
	res, err := s.SetSliders(sliders)
	require.NoError(t, err)

	assert.Equal(t, 29.0, res.AwayScore)
	assert.Equal(t, 27.0, res.HomeScore)
	assert.Len(t, published, 2)

	// A no-op slider write does not republish.
	res2, err := s.SetSliders(sliders)
	require.NoError(t, err)
	assert.Equal(t, res.AwayScore, res2.AwayScore)
	assert.Len(t, published, 2)
}

func TestSession_ResetSliders(t *testing.T) {
	client := &fakeClient{}
	s := newTestSession(t, client)

	_, err := s.SelectMatchup(context.Background(), nflSelection())
	require.NoError(t, err)

	sliders := s.Sliders()
	sliders.HomeDef = 95
	_, err = s.SetSliders(sliders)
	require.NoError(t, err)

	res, err := s.ResetSliders()
	require.NoError(t, err)
	assert.Equal(t, 24.0, res.AwayScore)
	assert.Equal(t, 27.0, res.HomeScore)
}

func TestManager_Lifecycle(t *testing.T) {
	client := &fakeClient{resp: nflResponse()}
	m := NewManager(client)

	var counts []int
	m.OnCountChange(func(n int) { counts = append(counts, n) })

	s := m.Create()
	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	m.Delete(s.ID)
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []int{1, 0}, counts)
}
