package matchup

import "math"

// ProjectRating maps a grade slider value onto the simulator's internal
// rating scale. The projection is a single-point linear interpolation
// anchored at the baseline grade/rating pair: moving the slider by one
// grade point moves the rating by scaleRange/39. The result is rounded
// to 2 decimal places.
//
// Inputs are pre-clamped to [60, 99] by the caller; the function is
// pure and total.
func ProjectRating(grade, baselineGrade, baselineRating, scaleRange float64) float64 {
	rating := (grade-baselineGrade)*scaleRange/GradeSpan + baselineRating
	return math.Round(rating*100) / 100
}
