package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/pulse/internal/error_values"
	"github.com/limbo/pulse/pkg/cleanup"
	"github.com/limbo/pulse/pkg/entity"
)

type WorkoutsRepository struct {
	conn Querier
}

func NewWorkoutsRepo(cfg DBConfig) *WorkoutsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for workoutsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for workoutsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &WorkoutsRepository{
		conn: pool,
	}
}

func NewWorkoutsRepoWithConn(conn Querier) *WorkoutsRepository {
	return &WorkoutsRepository{
		conn: conn,
	}
}

func (wr *WorkoutsRepository) Create(ctx context.Context, workout *entity.Workout) (uuid.UUID, error) {
	var id uuid.UUID
	row := wr.conn.QueryRow(ctx,
		`INSERT INTO workouts (user_id, type_id, workout_date, duration_min, intensity, distance_miles, calories)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id;`,
		workout.UserID,
		workout.TypeID,
		workout.WorkoutDate,
		workout.DurationMin,
		workout.Intensity,
		workout.DistanceMiles,
		workout.Calories,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrOwnerNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating workout db error: " + err.Error())
	}
	return id, nil
}

func (wr *WorkoutsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Workout, error) {
	var w entity.Workout
	w.ID = id
	row := wr.conn.QueryRow(ctx,
		`SELECT user_id, type_id, workout_date, duration_min, intensity, distance_miles, calories, created_at, updated_at
		FROM workouts WHERE id = $1;`, id)
	if err := row.Scan(&w.UserID, &w.TypeID, &w.WorkoutDate, &w.DurationMin,
		&w.Intensity, &w.DistanceMiles, &w.Calories, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrWorkoutNotFound
		}
		return nil, errors.New("getting workout by id error: " + err.Error())
	}
	return &w, nil
}

func (wr *WorkoutsRepository) GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Workout, error) {
	workouts := make([]*entity.Workout, 0)
	rows, err := wr.conn.Query(ctx,
		`SELECT id, user_id, type_id, workout_date, duration_min, intensity, distance_miles, calories, created_at, updated_at
		FROM workouts WHERE user_id = $1 ORDER BY workout_date DESC LIMIT $2 OFFSET $3;`, uid, limit, offset)
	if err != nil {
		return nil, errors.New("getting workouts by uid error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		w := entity.Workout{}
		err = rows.Scan(&w.ID, &w.UserID, &w.TypeID, &w.WorkoutDate, &w.DurationMin,
			&w.Intensity, &w.DistanceMiles, &w.Calories, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return nil, errors.New("unmarshalling workout error: " + err.Error())
		}
		workouts = append(workouts, &w)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return workouts, nil
}

func (wr *WorkoutsRepository) GetByUserAndDateRange(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]*entity.Workout, error) {
	rows, err := wr.conn.Query(ctx,
		`SELECT id, user_id, type_id, workout_date, duration_min, intensity, distance_miles, calories, created_at, updated_at
		FROM workouts WHERE user_id = $1 AND workout_date >= $2 AND workout_date < $3 ORDER BY workout_date;`,
		uid,
		from,
		to,
	)
	if err != nil {
		return nil, errors.New("getting workouts for period error: " + err.Error())
	}
	defer rows.Close()
	result := make([]*entity.Workout, 0, 2)
	for rows.Next() {
		w := entity.Workout{}
		err = rows.Scan(&w.ID, &w.UserID, &w.TypeID, &w.WorkoutDate, &w.DurationMin,
			&w.Intensity, &w.DistanceMiles, &w.Calories, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return nil, errors.New("workout row parsing error: " + err.Error())
		}
		result = append(result, &w)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected workout rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (wr *WorkoutsRepository) Update(ctx context.Context, workout *entity.Workout) error {
	ct, err := wr.conn.Exec(ctx,
		`UPDATE workouts SET type_id = $1, workout_date = $2, duration_min = $3, intensity = $4,
		distance_miles = $5, calories = $6, updated_at = NOW() WHERE id = $7;`,
		workout.TypeID,
		workout.WorkoutDate,
		workout.DurationMin,
		workout.Intensity,
		workout.DistanceMiles,
		workout.Calories,
		workout.ID,
	)
	if err != nil {
		return errors.New("error updating workout: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrWorkoutNotFound
	}
	return nil
}

func (wr *WorkoutsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := wr.conn.Exec(ctx, `DELETE FROM workouts WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting workout: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrWorkoutNotFound
	}
	return nil
}
