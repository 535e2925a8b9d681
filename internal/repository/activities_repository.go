package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/pulse/internal/error_values"
	"github.com/limbo/pulse/pkg/cleanup"
	"github.com/limbo/pulse/pkg/entity"
)

type ActivitiesRepository struct {
	conn Querier
}

func NewActivitiesRepo(cfg DBConfig) *ActivitiesRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for activitiesRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for activitiesRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &ActivitiesRepository{
		conn: pool,
	}
}

func NewActivitiesRepoWithConn(conn Querier) *ActivitiesRepository {
	return &ActivitiesRepository{
		conn: conn,
	}
}

// Upsert overwrites the whole derived row. One row per (user_id, activity_date)
// is enforced by a unique constraint; a recompute with the same workout set
// writes identical values, so the operation is idempotent.
func (ar *ActivitiesRepository) Upsert(ctx context.Context, activity *entity.Activity) error {
	_, err := ar.conn.Exec(ctx,
		`INSERT INTO activities (user_id, activity_date, calories, move_minutes, exercise_minutes, stand_hours,
			move_target, exercise_target, stand_target)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, activity_date) DO UPDATE SET
			calories = EXCLUDED.calories,
			move_minutes = EXCLUDED.move_minutes,
			exercise_minutes = EXCLUDED.exercise_minutes,
			stand_hours = EXCLUDED.stand_hours,
			move_target = EXCLUDED.move_target,
			exercise_target = EXCLUDED.exercise_target,
			stand_target = EXCLUDED.stand_target;`,
		activity.UserID,
		activity.Date,
		activity.Calories,
		activity.MoveMinutes,
		activity.ExerciseMinutes,
		activity.StandHours,
		activity.MoveTarget,
		activity.ExerciseTarget,
		activity.StandTarget,
	)
	if err != nil {
		return errors.New("upserting activity error: " + err.Error())
	}
	return nil
}

func (ar *ActivitiesRepository) GetByUserAndDate(ctx context.Context, uid uuid.UUID, day time.Time) (*entity.Activity, error) {
	var a entity.Activity
	row := ar.conn.QueryRow(ctx,
		`SELECT id, user_id, activity_date, calories, move_minutes, exercise_minutes, stand_hours,
			move_target, exercise_target, stand_target
		FROM activities WHERE user_id = $1 AND activity_date = $2;`,
		uid,
		day,
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.Calories, &a.MoveMinutes, &a.ExerciseMinutes,
		&a.StandHours, &a.MoveTarget, &a.ExerciseTarget, &a.StandTarget); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrActivityNotFound
		}
		return nil, errors.New("getting activity by date error: " + err.Error())
	}
	return &a, nil
}

func (ar *ActivitiesRepository) GetByUserAndDateRange(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]*entity.Activity, error) {
	rows, err := ar.conn.Query(ctx,
		`SELECT id, user_id, activity_date, calories, move_minutes, exercise_minutes, stand_hours,
			move_target, exercise_target, stand_target
		FROM activities WHERE user_id = $1 AND activity_date >= $2 AND activity_date < $3 ORDER BY activity_date;`,
		uid,
		from,
		to,
	)
	if err != nil {
		return nil, errors.New("getting activities for period error: " + err.Error())
	}
	defer rows.Close()
	result := make([]*entity.Activity, 0, 7)
	for rows.Next() {
		a := entity.Activity{}
		err = rows.Scan(&a.ID, &a.UserID, &a.Date, &a.Calories, &a.MoveMinutes, &a.ExerciseMinutes,
			&a.StandHours, &a.MoveTarget, &a.ExerciseTarget, &a.StandTarget)
		if err != nil {
			return nil, errors.New("activity row parsing error: " + err.Error())
		}
		result = append(result, &a)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected activity rows error: " + rows.Err().Error())
	}
	return result, nil
}

// GetAverages folds the whole history in SQL. COALESCE turns the empty
// history into zero averages instead of NULL scan errors. Targets are not
// averaged here, the service fills them with the user's current goals.
func (ar *ActivitiesRepository) GetAverages(ctx context.Context, uid uuid.UUID) (*entity.ActivityAverages, error) {
	var avg entity.ActivityAverages
	row := ar.conn.QueryRow(ctx,
		`SELECT COALESCE(AVG(calories), 0), COALESCE(AVG(move_minutes), 0),
			COALESCE(AVG(exercise_minutes), 0), COALESCE(AVG(stand_hours), 0)
		FROM activities WHERE user_id = $1;`,
		uid,
	)
	if err := row.Scan(&avg.Calories, &avg.MoveMinutes, &avg.ExerciseMinutes, &avg.StandHours); err != nil {
		return nil, errors.New("computing activity averages error: " + err.Error())
	}
	return &avg, nil
}
