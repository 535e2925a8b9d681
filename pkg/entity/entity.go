package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                uuid.UUID
	Name              string
	PasswordHash      string
	DailyMoveGoal     int
	DailyExerciseGoal int
	DailyStandGoal    int
}

// Goals is the per-user daily targets snapshot consumed by recomputes.
type Goals struct {
	Move     int `json:"move"`
	Exercise int `json:"exercise"`
	Stand    int `json:"stand"`
}

type Workout struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"uid"`
	TypeID        int       `json:"type_id"`
	WorkoutDate   time.Time `json:"date"`
	DurationMin   int       `json:"duration_min"`
	Intensity     string    `json:"intensity"`
	DistanceMiles *float64  `json:"distance_miles,omitempty"`
	// Calories is derived from duration and intensity, never client-supplied
	Calories  int       `json:"calories"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activity is the persisted daily summary, one row per (user, calendar day).
// Target fields hold the user's goals as of the last recompute.
type Activity struct {
	ID              int       `json:"-"`
	UserID          uuid.UUID `json:"uid"`
	Date            time.Time `json:"date"`
	Calories        int       `json:"calories"`
	MoveMinutes     int       `json:"move_minutes"`
	ExerciseMinutes float64   `json:"exercise_minutes"`
	StandHours      int       `json:"stand_hours"`
	MoveTarget      int       `json:"move_target"`
	ExerciseTarget  int       `json:"exercise_target"`
	StandTarget     int       `json:"stand_target"`
}

// DailyReport is one entry of the weekly rollup. Percentage is raw
// move progress, deliberately not capped at 100.
type DailyReport struct {
	Day            string  `json:"day"`
	Date           string  `json:"date"`
	CaloriesBurned int     `json:"caloriesBurned"`
	Percentage     float64 `json:"percentage"`
}

type ActivityAverages struct {
	Calories        float64 `json:"calories"`
	MoveMinutes     float64 `json:"moveMinutes"`
	MoveTarget      int     `json:"moveTarget"`
	ExerciseMinutes float64 `json:"exerciseMinutes"`
	ExerciseTarget  int     `json:"exerciseTarget"`
	StandHours      float64 `json:"standHours"`
	StandTarget     int     `json:"standTarget"`
}

// DailyProgress is the capped ring view for a single day.
type DailyProgress struct {
	Date               string  `json:"date"`
	MovePercentage     float64 `json:"movePercentage"`
	ExercisePercentage float64 `json:"exercisePercentage"`
	StandPercentage    float64 `json:"standPercentage"`
}
