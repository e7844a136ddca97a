// Package session owns the per-user what-if state: the selected
// matchup, the immutable baseline captured from the remote simulator,
// and the live slider values driving local recomputation.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/statline/matchup-sim/pkg/matchup"
	"github.com/statline/matchup-sim/pkg/upstream"
)

// ErrNoBaseline is returned when a recompute is requested before the
// first remote simulation has completed.
var ErrNoBaseline = errors.New("session: no baseline captured")

// ErrStaleSelection is returned when a baseline fetch completes for a
// matchup that is no longer selected.
var ErrStaleSelection = errors.New("session: selection changed during fetch")

// UpstreamClient is the slice of the simulation API the session needs.
type UpstreamClient interface {
	ListTeams(ctx context.Context, sport matchup.Sport) ([]upstream.Team, error)
	Simulate(ctx context.Context, req upstream.SimulationRequest) (*upstream.SimulationResponse, error)
}

// Selection identifies a matchup. The baseline lives and dies with this
// tuple: changing any field discards the baseline and forces a fresh
// remote fetch.
type Selection struct {
	Sport      matchup.Sport `json:"sport"`
	AwayTeamID string        `json:"away_team_id"`
	HomeTeamID string        `json:"home_team_id"`
}

// Complete returns true when both teams are selected.
func (s Selection) Complete() bool {
	return s.Sport.Valid() && s.AwayTeamID != "" && s.HomeTeamID != ""
}

// Session holds one user's matchup state. All mutation goes through the
// mutex; the baseline itself is immutable once captured and is swapped
// whole on selection change.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	client UpstreamClient

	mu       sync.RWMutex
	teams    map[string]upstream.Team // by ID, for the current sport
	sel      Selection
	baseline *matchup.Baseline
	sliders  matchup.SliderState
	result   *matchup.Result

	onResult func(matchup.Result)
}

// New creates a session backed by the given upstream client.
func New(client UpstreamClient) *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		client:    client,
		teams:     make(map[string]upstream.Team),
		sliders:   matchup.DefaultSliders(),
	}
}

// OnResult sets a callback invoked whenever a new result is published.
func (s *Session) OnResult(fn func(matchup.Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onResult = fn
}

// Teams fetches the catalog for a sport and caches it for selection
// validation. A failed fetch leaves the previous catalog and any
// current selection untouched.
func (s *Session) Teams(ctx context.Context, sport matchup.Sport) ([]upstream.Team, error) {
	teams, err := s.client.ListTeams(ctx, sport)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	s.mu.Lock()
	s.teams = make(map[string]upstream.Team, len(teams))
	for _, t := range teams {
		s.teams[t.ID] = t
	}
	s.mu.Unlock()

	return teams, nil
}

// SelectMatchup updates the selection and, when the tuple is complete,
// fetches a fresh baseline from the remote simulator.
//
// The in-flight fetch is keyed by the selection tuple: if the selection
// changes while the request is outstanding, the late response is
// dropped and ErrStaleSelection is returned instead of clobbering the
// newer state. A fetch failure for an unchanged tuple leaves any
// previously captured baseline intact.
func (s *Session) SelectMatchup(ctx context.Context, sel Selection) (*matchup.Result, error) {
	s.mu.Lock()
	if sel != s.sel {
		// Discard immediately so a recompute cannot run against a
		// baseline for a superseded matchup.
		s.sel = sel
		s.baseline = nil
		s.result = nil
		s.sliders = matchup.DefaultSliders()
	} else if s.baseline != nil {
		res := *s.result
		s.mu.Unlock()
		return &res, nil
	}
	away, awayOK := s.teams[sel.AwayTeamID]
	home, homeOK := s.teams[sel.HomeTeamID]
	s.mu.Unlock()

	if !sel.Complete() {
		return nil, nil
	}
	if !awayOK || !homeOK {
		return nil, fmt.Errorf("session: unknown team id in selection %v", sel)
	}

	resp, err := s.client.Simulate(ctx, upstream.SimulationRequest{
		Sport:      sel.Sport,
		AwayTeamID: sel.AwayTeamID,
		HomeTeamID: sel.HomeTeamID,
	})
	if err != nil {
		return nil, fmt.Errorf("baseline simulation: %w", err)
	}

	baseline, err := upstream.BuildBaseline(resp, sel.Sport, away, home)
	if err != nil {
		return nil, fmt.Errorf("baseline simulation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sel != sel {
		// A newer selection superseded this fetch while it was in
		// flight. Drop the response.
		return nil, ErrStaleSelection
	}

	s.baseline = baseline
	s.sliders = baseline.Sliders()
	res := matchup.Recompute(baseline, s.sliders)
	s.result = &res
	s.publishLocked(res)

	return &res, nil
}

// SetSliders applies new slider values and recomputes locally. The
// result is republished only when a score actually changed; the
// recomputed result is returned either way.
func (s *Session) SetSliders(sliders matchup.SliderState) (*matchup.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.baseline == nil {
		return nil, ErrNoBaseline
	}

	s.sliders = sliders.Clamped()
	res := matchup.Recompute(s.baseline, s.sliders)

	if s.result == nil || res.AwayScore != s.result.AwayScore || res.HomeScore != s.result.HomeScore {
		s.result = &res
		s.publishLocked(res)
	}

	return &res, nil
}

// ResetSliders snaps every slider back to its baseline grade, restoring
// the exact baseline result.
func (s *Session) ResetSliders() (*matchup.Result, error) {
	s.mu.RLock()
	b := s.baseline
	s.mu.RUnlock()

	if b == nil {
		return nil, ErrNoBaseline
	}
	return s.SetSliders(b.Sliders())
}

// publishLocked invokes the result callback. Caller holds s.mu; the
// callback must not call back into the session.
func (s *Session) publishLocked(res matchup.Result) {
	if s.onResult != nil {
		s.onResult(res)
	}
}

// Team returns a cached catalog entry by ID.
func (s *Session) Team(id string) (upstream.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	return t, ok
}

// Selection returns the current selection tuple.
func (s *Session) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel
}

// Baseline returns the captured baseline, or nil before the first
// completed simulation.
func (s *Session) Baseline() *matchup.Baseline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseline
}

// Sliders returns the live slider state.
func (s *Session) Sliders() matchup.SliderState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sliders
}

// Result returns the most recently published result, or nil.
func (s *Session) Result() *matchup.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil
	}
	res := *s.result
	return &res
}
