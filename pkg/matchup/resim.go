package matchup

import "math"

// side identifies which score an axis update targets.
type side int

const (
	awaySide side = iota
	homeSide
)

// axisUpdate is one slider axis's effect, expressed as an explicit
// (side, newScore) pair. Updates are collected for every axis that
// differs from baseline and applied in a fixed order so that two axes
// touching the same score cannot produce order-dependent results.
type axisUpdate struct {
	side  side
	score float64
}

// Recompute derives a Result from the baseline and the live slider
// state without another remote call.
//
// When no slider differs from its baseline grade the baseline scores
// are returned exactly, guaranteeing round-trip identity with the
// authoritative remote result. Otherwise each changed axis applies one
// single-variable update rule: the score formula
// (offense rating - opposing defense rating + home-field advantage) is
// evaluated at current and at baseline ratings, and the difference is
// added to the baseline score. Anchoring on the baseline score keeps
// the remote engine's absolute calibration while applying only the
// relative effect of the slider move.
//
// Offense sliders move their own side's score; defense sliders move the
// opponent's. A slider returned to its exact baseline grade contributes
// no update, so that side's score snaps back to the exact baseline
// value rather than a recomputed one.
func Recompute(b *Baseline, sliders SliderState) Result {
	sliders = sliders.Clamped()
	base := b.Sliders()

	if sliders == base {
		return buildResult(b, b.AwayScore, b.HomeScore, true)
	}

	hfa := b.HomeFieldAdvantage

	awayOff := ProjectRating(sliders.AwayOff, b.Away.OffensiveGrade, b.Away.OffensiveRating, b.OffensiveRatingRange)
	awayDef := ProjectRating(sliders.AwayDef, b.Away.DefensiveGrade, b.Away.DefensiveRating, b.DefensiveRatingRange)
	homeOff := ProjectRating(sliders.HomeOff, b.Home.OffensiveGrade, b.Home.OffensiveRating, b.OffensiveRatingRange)
	homeDef := ProjectRating(sliders.HomeDef, b.Home.DefensiveGrade, b.Home.DefensiveRating, b.DefensiveRatingRange)

	formula := func(off, def float64) float64 { return off - def + hfa }

	awayRef := formula(b.Away.OffensiveRating, b.Home.DefensiveRating)
	homeRef := formula(b.Home.OffensiveRating, b.Away.DefensiveRating)

	var updates []axisUpdate
	if sliders.AwayOff != base.AwayOff {
		updates = append(updates, axisUpdate{awaySide, b.AwayScore + formula(awayOff, homeDef) - awayRef})
	}
	if sliders.HomeOff != base.HomeOff {
		updates = append(updates, axisUpdate{homeSide, b.HomeScore + formula(homeOff, awayDef) - homeRef})
	}
	if sliders.AwayDef != base.AwayDef {
		// Defense suppresses the opponent's offense.
		updates = append(updates, axisUpdate{homeSide, b.HomeScore + formula(homeOff, awayDef) - homeRef})
	}
	if sliders.HomeDef != base.HomeDef {
		updates = append(updates, axisUpdate{awaySide, b.AwayScore + formula(awayOff, homeDef) - awayRef})
	}

	away, home := b.AwayScore, b.HomeScore
	for _, u := range updates {
		if u.side == awaySide {
			away = u.score
		} else {
			home = u.score
		}
	}

	away = RoundScore(math.Max(0, away), b.Sport)
	home = RoundScore(math.Max(0, home), b.Sport)

	return buildResult(b, away, home, false)
}

// buildResult derives spread, total, and the win-probability pair from
// final scores. The untouched path reuses the remote engine's reported
// probabilities when present; the adjusted path always uses the local
// logistic transform.
func buildResult(b *Baseline, away, home float64, untouched bool) Result {
	spread := home - away

	var pHome float64
	if untouched && b.HomeWinProbability > 0 && b.AwayWinProbability > 0 {
		pHome = clampProbability(b.HomeWinProbability)
	} else {
		pHome = WinProbability(spread, b.Sport)
	}

	return Result{
		AwayScore:          away,
		HomeScore:          home,
		Spread:             spread,
		Total:              away + home,
		AwayWinProbability: 1 - pHome,
		HomeWinProbability: pHome,
	}
}

// WinProbability converts a home-minus-away spread into the home side's
// win probability via a logistic transform, clamped to [0.001, 0.999].
func WinProbability(spread float64, sport Sport) float64 {
	k := basketballSpreadK
	if sport.IsFootball() {
		k = footballSpreadK
	}
	return clampProbability(1 / (1 + math.Exp(-k*spread)))
}

func clampProbability(p float64) float64 {
	if p < minWinProbability {
		return minWinProbability
	}
	if p > maxWinProbability {
		return maxWinProbability
	}
	return p
}

// RoundScore maps a raw recomputed score onto a realistic final score.
// Football codes snap low scores to the nearest real scoring increment
// (0, a field goal, a touchdown); everything else rounds to the nearest
// integer.
func RoundScore(score float64, sport Sport) float64 {
	if sport.IsFootball() {
		switch {
		case score <= 2:
			return 0
		case score < 4.5:
			return 3
		case score < 6:
			return 6
		}
	}
	return math.Round(score)
}
