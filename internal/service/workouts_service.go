package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/pulse/internal/error_values"
	"github.com/limbo/pulse/internal/repository"
	"github.com/limbo/pulse/pkg/entity"
)

// WorkoutsService owns workout mutations and the derived daily activity
// summary. Every mutation and its recompute run inside one unit of work,
// so a committed workout is never visible without its summary update.
type WorkoutsService struct {
	uow          repository.UnitOfWorkI
	workoutsRepo repository.WorkoutsRepositoryI
	loc          *time.Location
}

// NewWorkoutsService builds the service. loc is the reference timezone for
// calendar-day boundaries; workoutsRepo serves the read-only paths outside
// any transaction.
func NewWorkoutsService(uow repository.UnitOfWorkI, workoutsRepo repository.WorkoutsRepositoryI, loc *time.Location) *WorkoutsService {
	if uow == nil || workoutsRepo == nil {
		log.Fatal("on workouts service provided nil dependencies")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &WorkoutsService{
		uow:          uow,
		workoutsRepo: workoutsRepo,
		loc:          loc,
	}
}

// dayBounds returns [start-of-day, start-of-next-day) for t in the
// reference timezone.
func (ws *WorkoutsService) dayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(ws.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, ws.loc)
	return start, start.AddDate(0, 0, 1)
}

// recomputeDay rebuilds the (uid, day) summary row from that day's workouts
// and the given goals snapshot. Must be called with repos bound to the
// mutation's transaction.
func (ws *WorkoutsService) recomputeDay(ctx context.Context, repos *repository.Repositories, uid uuid.UUID, goals *entity.Goals, day time.Time) (*entity.Activity, error) {
	start, end := ws.dayBounds(day)
	workouts, err := repos.Workouts.GetByUserAndDateRange(ctx, uid, start, end)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	calories, moveMinutes, exerciseMinutes, standHours := aggregateDay(workouts)
	activity := &entity.Activity{
		UserID:          uid,
		Date:            start,
		Calories:        calories,
		MoveMinutes:     moveMinutes,
		ExerciseMinutes: exerciseMinutes,
		StandHours:      standHours,
		MoveTarget:      goals.Move,
		ExerciseTarget:  goals.Exercise,
		StandTarget:     goals.Stand,
	}
	if err = repos.Activities.Upsert(ctx, activity); err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return activity, nil
}

func (ws *WorkoutsService) CreateWorkout(ctx context.Context, uid uuid.UUID, req *CreateWorkoutRequest) (*entity.Workout, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Date.After(time.Now()) {
		return nil, errorvalues.ErrWorkoutDateNotAllowed
	}
	var created *entity.Workout
	err := ws.uow.Do(ctx, func(repos *repository.Repositories) error {
		// Row lock on the user serializes same-user recomputes and fails
		// the whole transaction when the user is gone
		goals, err := repos.Users.GetGoalsForUpdate(ctx, uid)
		if err != nil {
			if errors.Is(err, errorvalues.ErrUserNotFound) {
				return errorvalues.ErrUserNotFound
			}
			return errors.New("repository error: " + err.Error())
		}
		workout := &entity.Workout{
			UserID:        uid,
			TypeID:        req.TypeID,
			WorkoutDate:   req.Date,
			DurationMin:   req.DurationMin,
			Intensity:     req.Intensity,
			DistanceMiles: req.DistanceMiles,
			Calories:      EstimateCalories(req.DurationMin, req.Intensity),
		}
		id, err := repos.Workouts.Create(ctx, workout)
		if err != nil {
			if errors.Is(err, errorvalues.ErrOwnerNotFound) {
				return errorvalues.ErrUserNotFound
			}
			return errors.New("repository error: " + err.Error())
		}
		if _, err = ws.recomputeDay(ctx, repos, uid, goals, req.Date); err != nil {
			return err
		}
		created, err = repos.Workouts.GetByID(ctx, id)
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (ws *WorkoutsService) GetWorkout(ctx context.Context, workoutID, userID uuid.UUID) (*entity.Workout, error) {
	workout, err := ws.workoutsRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrWorkoutNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	if workout.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	return workout, nil
}

func (ws *WorkoutsService) GetUserWorkouts(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Workout, error) {
	workouts, err := ws.workoutsRepo.GetByUserID(ctx, uid, pagination.Limit, pagination.Offset)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return workouts, nil
}

func (ws *WorkoutsService) UpdateWorkout(ctx context.Context, workoutID, userID uuid.UUID, req *UpdateWorkoutRequest) (*entity.Workout, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Date.After(time.Now()) {
		return nil, errorvalues.ErrWorkoutDateNotAllowed
	}
	var updated *entity.Workout
	err := ws.uow.Do(ctx, func(repos *repository.Repositories) error {
		workout, err := repos.Workouts.GetByID(ctx, workoutID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrWorkoutNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		if workout.UserID != userID {
			return errorvalues.ErrWrongOwner
		}
		goals, err := repos.Users.GetGoalsForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrUserNotFound) {
				return errorvalues.ErrUserNotFound
			}
			return errors.New("repository error: " + err.Error())
		}
		oldDay, _ := ws.dayBounds(workout.WorkoutDate)
		newDay, _ := ws.dayBounds(req.Date)

		workout.TypeID = req.TypeID
		workout.WorkoutDate = req.Date
		workout.DurationMin = req.DurationMin
		workout.Intensity = req.Intensity
		workout.DistanceMiles = req.DistanceMiles
		// calories are derived: re-estimate whenever duration or intensity
		// may have changed
		workout.Calories = EstimateCalories(req.DurationMin, req.Intensity)
		if err = repos.Workouts.Update(ctx, workout); err != nil {
			if errors.Is(err, errorvalues.ErrWorkoutNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		if _, err = ws.recomputeDay(ctx, repos, userID, goals, oldDay); err != nil {
			return err
		}
		if !newDay.Equal(oldDay) {
			if _, err = ws.recomputeDay(ctx, repos, userID, goals, newDay); err != nil {
				return err
			}
		}
		updated = workout
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (ws *WorkoutsService) DeleteWorkout(ctx context.Context, workoutID, userID uuid.UUID) error {
	return ws.uow.Do(ctx, func(repos *repository.Repositories) error {
		workout, err := repos.Workouts.GetByID(ctx, workoutID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrWorkoutNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		if workout.UserID != userID {
			return errorvalues.ErrWrongOwner
		}
		goals, err := repos.Users.GetGoalsForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrUserNotFound) {
				return errorvalues.ErrUserNotFound
			}
			return errors.New("repository error: " + err.Error())
		}
		if err = repos.Workouts.Delete(ctx, workoutID); err != nil {
			if errors.Is(err, errorvalues.ErrWorkoutNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		// the summary row is kept, recompute zeroes it when this was the
		// day's last workout
		_, err = ws.recomputeDay(ctx, repos, userID, goals, workout.WorkoutDate)
		return err
	})
}

func (ws *WorkoutsService) RecomputeDay(ctx context.Context, uid uuid.UUID, day time.Time) (*entity.Activity, error) {
	var activity *entity.Activity
	err := ws.uow.Do(ctx, func(repos *repository.Repositories) error {
		goals, err := repos.Users.GetGoalsForUpdate(ctx, uid)
		if err != nil {
			if errors.Is(err, errorvalues.ErrUserNotFound) {
				return errorvalues.ErrUserNotFound
			}
			return errors.New("repository error: " + err.Error())
		}
		activity, err = ws.recomputeDay(ctx, repos, uid, goals, day)
		return err
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	if validationError, ok := err.(validator.ValidationErrors); ok {
		err = errors.New("validation error: ")
		for _, fieldErr := range validationError {
			err = errors.Join(err, fieldErr)
		}
		return err
	}
	return errors.New("validation unexpected error: " + err.Error())
}
