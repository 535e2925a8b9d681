package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/pulse/internal/error_values"
	"github.com/limbo/pulse/internal/repository"
	"github.com/limbo/pulse/internal/service"
	"github.com/limbo/pulse/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	service.InitValidator()
	m.Run()
}

type mockState int

const (
	stateSuccess = iota
	stateDBError
	stateUserNotFoundError
	stateWorkoutNotFoundError
)

// Variables for tests
var (
	testUserID = uuid.New()
	testGoals  = entity.Goals{
		Move:     30,
		Exercise: 30,
		Stand:    12,
	}
)

type usersRepoMock struct {
	state mockState
	goals entity.Goals
}

func (urmock *usersRepoMock) Create(ctx context.Context, user *entity.User) error {
	return nil
}

func (urmock *usersRepoMock) FindByName(ctx context.Context, name string) (*entity.User, error) {
	return nil, errorvalues.ErrUserNotFound
}

func (urmock *usersRepoMock) FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error) {
	return nil, errorvalues.ErrUserNotFound
}

func (urmock *usersRepoMock) GetGoalsForUpdate(ctx context.Context, uid uuid.UUID) (*entity.Goals, error) {
	switch urmock.state {
	case stateUserNotFoundError:
		return nil, errorvalues.ErrUserNotFound
	case stateDBError:
		return nil, errors.New("db error")
	default:
		goals := urmock.goals
		return &goals, nil
	}
}

func (urmock *usersRepoMock) GetGoals(ctx context.Context, uid uuid.UUID) (*entity.Goals, error) {
	return urmock.GetGoalsForUpdate(ctx, uid)
}

func (urmock *usersRepoMock) UpdateGoals(ctx context.Context, uid uuid.UUID, goals *entity.Goals) error {
	urmock.goals = *goals
	return nil
}

func (urmock *usersRepoMock) Delete(ctx context.Context, uid uuid.UUID) error {
	return nil
}

// workoutsRepoMock keeps workouts in memory so recomputes read back what
// mutations wrote, same as the real repository inside one transaction.
type workoutsRepoMock struct {
	state    mockState
	workouts map[uuid.UUID]*entity.Workout
}

func newWorkoutsRepoMock() *workoutsRepoMock {
	return &workoutsRepoMock{
		workouts: make(map[uuid.UUID]*entity.Workout),
	}
}

func (wrmock *workoutsRepoMock) Create(ctx context.Context, workout *entity.Workout) (uuid.UUID, error) {
	switch wrmock.state {
	case stateDBError:
		return uuid.UUID{}, errors.New("db error")
	case stateUserNotFoundError:
		return uuid.UUID{}, errorvalues.ErrOwnerNotFound
	}
	w := *workout
	w.ID = uuid.New()
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	wrmock.workouts[w.ID] = &w
	return w.ID, nil
}

func (wrmock *workoutsRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*entity.Workout, error) {
	if wrmock.state == stateDBError {
		return nil, errors.New("db error")
	}
	w, ok := wrmock.workouts[id]
	if !ok || wrmock.state == stateWorkoutNotFoundError {
		return nil, errorvalues.ErrWorkoutNotFound
	}
	cp := *w
	return &cp, nil
}

func (wrmock *workoutsRepoMock) GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Workout, error) {
	if wrmock.state == stateDBError {
		return nil, errors.New("db error")
	}
	result := make([]*entity.Workout, 0)
	for _, w := range wrmock.workouts {
		if w.UserID == uid {
			cp := *w
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (wrmock *workoutsRepoMock) GetByUserAndDateRange(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]*entity.Workout, error) {
	if wrmock.state == stateDBError {
		return nil, errors.New("db error")
	}
	result := make([]*entity.Workout, 0)
	for _, w := range wrmock.workouts {
		if w.UserID == uid && !w.WorkoutDate.Before(from) && w.WorkoutDate.Before(to) {
			cp := *w
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (wrmock *workoutsRepoMock) Update(ctx context.Context, workout *entity.Workout) error {
	if wrmock.state == stateDBError {
		return errors.New("db error")
	}
	if _, ok := wrmock.workouts[workout.ID]; !ok {
		return errorvalues.ErrWorkoutNotFound
	}
	cp := *workout
	cp.UpdatedAt = time.Now()
	wrmock.workouts[workout.ID] = &cp
	return nil
}

func (wrmock *workoutsRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	if wrmock.state == stateDBError {
		return errors.New("db error")
	}
	if _, ok := wrmock.workouts[id]; !ok {
		return errorvalues.ErrWorkoutNotFound
	}
	delete(wrmock.workouts, id)
	return nil
}

type activitiesRepoMock struct {
	state mockState
	rows  map[string]*entity.Activity
}

func newActivitiesRepoMock() *activitiesRepoMock {
	return &activitiesRepoMock{
		rows: make(map[string]*entity.Activity),
	}
}

func activityKey(uid uuid.UUID, day time.Time) string {
	return uid.String() + "|" + day.UTC().Format(time.DateOnly)
}

func (armock *activitiesRepoMock) Upsert(ctx context.Context, activity *entity.Activity) error {
	if armock.state == stateDBError {
		return errors.New("db error")
	}
	cp := *activity
	armock.rows[activityKey(activity.UserID, activity.Date)] = &cp
	return nil
}

func (armock *activitiesRepoMock) GetByUserAndDate(ctx context.Context, uid uuid.UUID, day time.Time) (*entity.Activity, error) {
	if armock.state == stateDBError {
		return nil, errors.New("db error")
	}
	a, ok := armock.rows[activityKey(uid, day)]
	if !ok {
		return nil, errorvalues.ErrActivityNotFound
	}
	cp := *a
	return &cp, nil
}

func (armock *activitiesRepoMock) GetByUserAndDateRange(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]*entity.Activity, error) {
	if armock.state == stateDBError {
		return nil, errors.New("db error")
	}
	result := make([]*entity.Activity, 0)
	for _, a := range armock.rows {
		if a.UserID == uid && !a.Date.Before(from) && a.Date.Before(to) {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (armock *activitiesRepoMock) GetAverages(ctx context.Context, uid uuid.UUID) (*entity.ActivityAverages, error) {
	if armock.state == stateDBError {
		return nil, errors.New("db error")
	}
	avg := entity.ActivityAverages{}
	count := 0
	for _, a := range armock.rows {
		if a.UserID != uid {
			continue
		}
		avg.Calories += float64(a.Calories)
		avg.MoveMinutes += float64(a.MoveMinutes)
		avg.ExerciseMinutes += a.ExerciseMinutes
		avg.StandHours += float64(a.StandHours)
		count++
	}
	if count > 0 {
		avg.Calories /= float64(count)
		avg.MoveMinutes /= float64(count)
		avg.ExerciseMinutes /= float64(count)
		avg.StandHours /= float64(count)
	}
	return &avg, nil
}

type uowMock struct {
	repos *repository.Repositories
}

func (uow *uowMock) Do(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return fn(uow.repos)
}

type aggregatorFixture struct {
	service    *service.WorkoutsService
	users      *usersRepoMock
	workouts   *workoutsRepoMock
	activities *activitiesRepoMock
}

func newAggregatorFixture() *aggregatorFixture {
	return newAggregatorFixtureIn(time.UTC)
}

func newAggregatorFixtureIn(loc *time.Location) *aggregatorFixture {
	users := &usersRepoMock{goals: testGoals}
	workouts := newWorkoutsRepoMock()
	activities := newActivitiesRepoMock()
	uow := &uowMock{
		repos: &repository.Repositories{
			Users:      users,
			Workouts:   workouts,
			Activities: activities,
		},
	}
	return &aggregatorFixture{
		service:    service.NewWorkoutsService(uow, workouts, loc),
		users:      users,
		workouts:   workouts,
		activities: activities,
	}
}

// pastDate anchors test workouts at noon so that adding a few hours can
// never drift onto the next calendar day, whatever the wall clock says.
func pastDate(daysAgo int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
}

func TestCreateWorkoutSingle(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	date := pastDate(1)
	workout, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
		TypeID:      1,
		Date:        date,
		DurationMin: 30,
		Intensity:   "medium",
	})
	require.NoError(t, err)
	assert.Equal(t, 210, workout.Calories)

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	activity, err := f.activities.GetByUserAndDate(ctx, testUserID, day)
	require.NoError(t, err)
	assert.Equal(t, 210, activity.Calories)
	assert.Equal(t, 30, activity.MoveMinutes)
	assert.InDelta(t, 21.0, activity.ExerciseMinutes, 1e-9)
	assert.Equal(t, 1, activity.StandHours)
	assert.Equal(t, testGoals.Move, activity.MoveTarget)
	assert.Equal(t, testGoals.Exercise, activity.ExerciseTarget)
	assert.Equal(t, testGoals.Stand, activity.StandTarget)
}

func TestCreateWorkoutTwoSameDay(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	date := pastDate(1)
	_, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
		Date:        date,
		DurationMin: 45,
		Intensity:   "high",
	})
	require.NoError(t, err)
	_, err = f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
		Date:        date.Add(2 * time.Hour),
		DurationMin: 20,
		Intensity:   "low",
	})
	require.NoError(t, err)

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	activity, err := f.activities.GetByUserAndDate(ctx, testUserID, day)
	require.NoError(t, err)
	assert.Equal(t, 530, activity.Calories)
	assert.Equal(t, 65, activity.MoveMinutes)
	assert.InDelta(t, 53.0, activity.ExerciseMinutes, 1e-9)
	assert.Equal(t, 3, activity.StandHours)
}

func TestCreateWorkoutSumProperty(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	date := pastDate(1)
	durations := []int{15, 40, 75, 90}
	intensities := []string{"low", "medium", "high", "medium"}
	expectedSum := 0
	for i := range durations {
		w, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
			Date:        date,
			DurationMin: durations[i],
			Intensity:   intensities[i],
		})
		require.NoError(t, err)
		expectedSum += w.Calories
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	activity, err := f.activities.GetByUserAndDate(ctx, testUserID, day)
	require.NoError(t, err)
	assert.Equal(t, expectedSum, activity.Calories)
}

func TestStandHoursCapSaturates(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	date := pastDate(1)
	// 3 x 300 min = 30 stand blocks, far over the daily cap
	for range 3 {
		_, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
			Date:        date,
			DurationMin: 300,
			Intensity:   "low",
		})
		require.NoError(t, err)
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	activity, err := f.activities.GetByUserAndDate(ctx, testUserID, day)
	require.NoError(t, err)
	assert.Equal(t, 12, activity.StandHours)
}

func TestDeleteLastWorkoutZeroesRow(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	date := pastDate(1)
	workout, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
		Date:        date,
		DurationMin: 30,
		Intensity:   "medium",
	})
	require.NoError(t, err)

	err = f.service.DeleteWorkout(ctx, workout.ID, testUserID)
	require.NoError(t, err)

	// the row survives the deletion, recomputed to all zeroes
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	activity, err := f.activities.GetByUserAndDate(ctx, testUserID, day)
	require.NoError(t, err)
	assert.Equal(t, 0, activity.Calories)
	assert.Equal(t, 0, activity.MoveMinutes)
	assert.InDelta(t, 0.0, activity.ExerciseMinutes, 1e-9)
	assert.Equal(t, 0, activity.StandHours)
	assert.Equal(t, testGoals.Move, activity.MoveTarget)
}

func TestRecomputeDayIdempotent(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	date := pastDate(2)
	_, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
		Date:        date,
		DurationMin: 50,
		Intensity:   "high",
	})
	require.NoError(t, err)

	first, err := f.service.RecomputeDay(ctx, testUserID, date)
	require.NoError(t, err)
	second, err := f.service.RecomputeDay(ctx, testUserID, date)
	require.NoError(t, err)
	assert.Equal(t, *first, *second)
}

func TestRecomputeEmptyDayCreatesZeroRow(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	date := pastDate(3)
	activity, err := f.service.RecomputeDay(ctx, testUserID, date)
	require.NoError(t, err)
	assert.Equal(t, 0, activity.Calories)
	assert.Equal(t, 0, activity.MoveMinutes)
	assert.Equal(t, 0, activity.StandHours)
	assert.Equal(t, testGoals.Move, activity.MoveTarget)

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	_, err = f.activities.GetByUserAndDate(ctx, testUserID, day)
	assert.NoError(t, err)
}

func TestCreateWorkoutValidation(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	t.Run("zero duration", func(t *testing.T) {
		_, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
			Date:        pastDate(1),
			DurationMin: 0,
			Intensity:   "medium",
		})
		assert.Error(t, err)
	})
	t.Run("negative duration", func(t *testing.T) {
		_, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
			Date:        pastDate(1),
			DurationMin: -10,
			Intensity:   "medium",
		})
		assert.Error(t, err)
	})
	t.Run("unknown intensity", func(t *testing.T) {
		_, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
			Date:        pastDate(1),
			DurationMin: 30,
			Intensity:   "extreme",
		})
		assert.Error(t, err)
	})
	t.Run("future date", func(t *testing.T) {
		_, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
			Date:        time.Now().Add(48 * time.Hour),
			DurationMin: 30,
			Intensity:   "medium",
		})
		assert.ErrorIs(t, err, errorvalues.ErrWorkoutDateNotAllowed)
	})
	t.Run("negative distance", func(t *testing.T) {
		distance := -1.5
		_, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
			Date:          pastDate(1),
			DurationMin:   30,
			Intensity:     "medium",
			DistanceMiles: &distance,
		})
		assert.Error(t, err)
	})
}

func TestCreateWorkoutUserGone(t *testing.T) {
	f := newAggregatorFixture()
	f.users.state = stateUserNotFoundError
	ctx := context.Background()
	_, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
		Date:        pastDate(1),
		DurationMin: 30,
		Intensity:   "medium",
	})
	assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	// mutation failed as a whole, nothing got persisted
	assert.Empty(t, f.workouts.workouts)
	assert.Empty(t, f.activities.rows)
}

func TestUpdateWorkoutRecomputesCalories(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	date := pastDate(1)
	workout, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
		Date:        date,
		DurationMin: 30,
		Intensity:   "medium",
	})
	require.NoError(t, err)

	updated, err := f.service.UpdateWorkout(ctx, workout.ID, testUserID, &service.UpdateWorkoutRequest{
		Date:        date,
		DurationMin: 60,
		Intensity:   "high",
	})
	require.NoError(t, err)
	assert.Equal(t, 600, updated.Calories)

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	activity, err := f.activities.GetByUserAndDate(ctx, testUserID, day)
	require.NoError(t, err)
	assert.Equal(t, 600, activity.Calories)
	assert.Equal(t, 60, activity.MoveMinutes)
	assert.InDelta(t, 60.0, activity.ExerciseMinutes, 1e-9)
	assert.Equal(t, 2, activity.StandHours)
}

func TestUpdateWorkoutMovesDay(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	oldDate := pastDate(2)
	newDate := pastDate(1)
	workout, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
		Date:        oldDate,
		DurationMin: 30,
		Intensity:   "medium",
	})
	require.NoError(t, err)

	_, err = f.service.UpdateWorkout(ctx, workout.ID, testUserID, &service.UpdateWorkoutRequest{
		Date:        newDate,
		DurationMin: 30,
		Intensity:   "medium",
	})
	require.NoError(t, err)

	oldDay := time.Date(oldDate.Year(), oldDate.Month(), oldDate.Day(), 0, 0, 0, 0, time.UTC)
	newDay := time.Date(newDate.Year(), newDate.Month(), newDate.Day(), 0, 0, 0, 0, time.UTC)
	oldActivity, err := f.activities.GetByUserAndDate(ctx, testUserID, oldDay)
	require.NoError(t, err)
	assert.Equal(t, 0, oldActivity.MoveMinutes)
	newActivity, err := f.activities.GetByUserAndDate(ctx, testUserID, newDay)
	require.NoError(t, err)
	assert.Equal(t, 30, newActivity.MoveMinutes)
}

func TestWorkoutOwnership(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	workout, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
		Date:        pastDate(1),
		DurationMin: 30,
		Intensity:   "medium",
	})
	require.NoError(t, err)
	stranger := uuid.New()
	t.Run("get", func(t *testing.T) {
		_, err := f.service.GetWorkout(ctx, workout.ID, stranger)
		assert.ErrorIs(t, err, errorvalues.ErrWrongOwner)
	})
	t.Run("update", func(t *testing.T) {
		_, err := f.service.UpdateWorkout(ctx, workout.ID, stranger, &service.UpdateWorkoutRequest{
			Date:        pastDate(1),
			DurationMin: 10,
			Intensity:   "low",
		})
		assert.ErrorIs(t, err, errorvalues.ErrWrongOwner)
	})
	t.Run("delete", func(t *testing.T) {
		err := f.service.DeleteWorkout(ctx, workout.ID, stranger)
		assert.ErrorIs(t, err, errorvalues.ErrWrongOwner)
	})
}

func TestWorkoutNotFound(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	t.Run("get", func(t *testing.T) {
		_, err := f.service.GetWorkout(ctx, uuid.New(), testUserID)
		assert.ErrorIs(t, err, errorvalues.ErrWorkoutNotFound)
	})
	t.Run("delete", func(t *testing.T) {
		err := f.service.DeleteWorkout(ctx, uuid.New(), testUserID)
		assert.ErrorIs(t, err, errorvalues.ErrWorkoutNotFound)
	})
}

func TestRecomputeUsesConfiguredTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	f := newAggregatorFixtureIn(loc)
	ctx := context.Background()
	// 03:00 UTC on the 15th is still 22:00 on the 14th in UTC-5
	date := time.Date(2026, time.July, 15, 3, 0, 0, 0, time.UTC)
	_, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
		Date:        date,
		DurationMin: 30,
		Intensity:   "medium",
	})
	require.NoError(t, err)

	localDay := time.Date(2026, time.July, 14, 0, 0, 0, 0, loc)
	activity, err := f.activities.GetByUserAndDate(ctx, testUserID, localDay)
	require.NoError(t, err)
	assert.Equal(t, 30, activity.MoveMinutes)
	assert.Equal(t, 210, activity.Calories)
}

func TestGoalSnapshotFollowsCurrentGoals(t *testing.T) {
	f := newAggregatorFixture()
	ctx := context.Background()
	date := pastDate(1)
	_, err := f.service.CreateWorkout(ctx, testUserID, &service.CreateWorkoutRequest{
		Date:        date,
		DurationMin: 30,
		Intensity:   "medium",
	})
	require.NoError(t, err)

	// goals change, next recompute overwrites the snapshot
	f.users.goals = entity.Goals{Move: 60, Exercise: 45, Stand: 10}
	activity, err := f.service.RecomputeDay(ctx, testUserID, date)
	require.NoError(t, err)
	assert.Equal(t, 60, activity.MoveTarget)
	assert.Equal(t, 45, activity.ExerciseTarget)
	assert.Equal(t, 10, activity.StandTarget)
}
