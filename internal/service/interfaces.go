package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/pulse/pkg/entity"
)

type RegisterRequest struct {
	Name     string `validate:"required,alphanum_underscore,min=3,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

type CreateWorkoutRequest struct {
	TypeID        int       `validate:"gte=0"`
	Date          time.Time `validate:"required"`
	DurationMin   int       `validate:"required,gt=0"`
	Intensity     string    `validate:"required,oneof=low medium high"`
	DistanceMiles *float64  `validate:"omitempty,gte=0"`
}

type UpdateWorkoutRequest struct {
	TypeID        int       `validate:"gte=0"`
	Date          time.Time `validate:"required"`
	DurationMin   int       `validate:"required,gt=0"`
	Intensity     string    `validate:"required,oneof=low medium high"`
	DistanceMiles *float64  `validate:"omitempty,gte=0"`
}

type UpdateGoalsRequest struct {
	Move     int `validate:"required,gt=0"`
	Exercise int `validate:"required,gt=0"`
	Stand    int `validate:"required,gt=0,lte=24"`
}

type PaginationOpts struct {
	Limit  int
	Offset int
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, give back user's data with ID.
	Login(ctx context.Context, name, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// Overwrites user's daily move/exercise/stand targets
	UpdateGoals(ctx context.Context, id uuid.UUID, req *UpdateGoalsRequest) error
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

type WorkoutsServiceI interface {
	// Creates workout with estimated calories and synchronously recomputes
	// the owning day's activity summary in one transaction
	CreateWorkout(ctx context.Context, uid uuid.UUID, req *CreateWorkoutRequest) (*entity.Workout, error)
	GetWorkout(ctx context.Context, workoutID, userID uuid.UUID) (*entity.Workout, error)
	GetUserWorkouts(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Workout, error)
	// Replaces workout fields, re-estimates calories when duration or
	// intensity changed, recomputes every affected day
	UpdateWorkout(ctx context.Context, workoutID, userID uuid.UUID, req *UpdateWorkoutRequest) (*entity.Workout, error)
	// Deletes workout and recomputes its day. The day's summary row stays,
	// zeroed when this was the last workout
	DeleteWorkout(ctx context.Context, workoutID, userID uuid.UUID) error
	// Rebuilds the summary row for (uid, day) from scratch
	RecomputeDay(ctx context.Context, uid uuid.UUID, day time.Time) (*entity.Activity, error)
}

type ReportsServiceI interface {
	// Exactly 7 daily views covering [today-6, today], oldest first,
	// zero placeholders for days without a stored summary
	Weekly(ctx context.Context, uid uuid.UUID) ([]entity.DailyReport, error)
	// Stored summaries within the month, no gap-filling
	Monthly(ctx context.Context, uid uuid.UUID, year int, month time.Month) ([]*entity.Activity, error)
	// All-time per-field means plus the user's current targets
	Averages(ctx context.Context, uid uuid.UUID) (*entity.ActivityAverages, error)
	// Capped ring percentages for one day
	DailyProgress(ctx context.Context, uid uuid.UUID, day time.Time) (*entity.DailyProgress, error)
	// Reference timezone for calendar-day boundaries. Date params must be
	// parsed in this location or a request for day D can resolve to D-1
	Location() *time.Location
}
