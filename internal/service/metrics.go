package service

import (
	"math"

	"github.com/limbo/pulse/pkg/entity"
)

const (
	IntensityLow    = "low"
	IntensityMedium = "medium"
	IntensityHigh   = "high"

	// standHoursCap saturates the stand estimate at 12 hours per day
	standHoursCap = 12
	// standBlockMin is how many workout minutes count as one stood hour
	standBlockMin = 30
)

// calorieFactors maps intensity to burned calories per minute.
var calorieFactors = map[string]float64{
	IntensityLow:    4,
	IntensityMedium: 7,
	IntensityHigh:   10,
}

// exerciseWeights maps intensity to its contribution per workout minute
// towards the exercise-minutes ring.
var exerciseWeights = map[string]float64{
	IntensityLow:    0.4,
	IntensityMedium: 0.7,
	IntensityHigh:   1.0,
}

// EstimateCalories computes burned calories for a single workout.
// Unknown intensity falls back to the medium factor, duration validation
// happens upstream.
func EstimateCalories(durationMin int, intensity string) int {
	factor, ok := calorieFactors[intensity]
	if !ok {
		factor = calorieFactors[IntensityMedium]
	}
	return int(math.Round(factor * float64(durationMin)))
}

// ProgressPercentage normalizes (current, target) to [0, 100] for ring
// rendering. Non-positive target yields 0. The weekly report uses its own
// uncapped percentage, the two are not interchangeable.
func ProgressPercentage(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	pct := current / target * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// aggregateDay folds one day's workouts into the derived summary fields.
// An empty slice folds to all zeroes.
func aggregateDay(workouts []*entity.Workout) (calories, moveMinutes int, exerciseMinutes float64, standHours int) {
	for _, w := range workouts {
		calories += w.Calories
		moveMinutes += w.DurationMin
		weight, ok := exerciseWeights[w.Intensity]
		if !ok {
			weight = exerciseWeights[IntensityMedium]
		}
		exerciseMinutes += weight * float64(w.DurationMin)
		// every started 30-minute block counts as one stood hour
		standHours += (w.DurationMin + standBlockMin - 1) / standBlockMin
	}
	if standHours > standHoursCap {
		standHours = standHoursCap
	}
	return calories, moveMinutes, exerciseMinutes, standHours
}
