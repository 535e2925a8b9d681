package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/pulse/pkg/entity"
)

type UsersRepositoryI interface {
	// Creates new user in database with default daily goals
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by name. Can be used for login
	FindByName(ctx context.Context, name string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Reads current daily goals, locking the user row for the duration
	// of the surrounding transaction. Serializes same-user recomputes.
	GetGoalsForUpdate(ctx context.Context, uid uuid.UUID) (*entity.Goals, error)
	// Reads current daily goals without locking
	GetGoals(ctx context.Context, uid uuid.UUID) (*entity.Goals, error)
	// Overwrites user's daily goals
	UpdateGoals(ctx context.Context, uid uuid.UUID, goals *entity.Goals) error
	// Deletes user
	Delete(ctx context.Context, uid uuid.UUID) error
}

type WorkoutsRepositoryI interface {
	// Inserts workout. Calories must already be estimated by the caller
	Create(ctx context.Context, workout *entity.Workout) (uuid.UUID, error)
	// Searches workout with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Workout, error)
	// Lists workouts owned by user with uid, newest first. Requires pagination params provided
	GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Workout, error)
	// Provides user's workouts with workout_date in [from, to)
	GetByUserAndDateRange(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]*entity.Workout, error)
	// Updates workout by ID (ID in workout is necessary)
	Update(ctx context.Context, workout *entity.Workout) error
	// Deletes workout with id
	Delete(ctx context.Context, id uuid.UUID) error
}

type ActivitiesRepositoryI interface {
	// Inserts or overwrites the daily summary row for (user, day)
	Upsert(ctx context.Context, activity *entity.Activity) error
	// Searches the daily summary for (uid, day). Day must be start-of-day
	GetByUserAndDate(ctx context.Context, uid uuid.UUID, day time.Time) (*entity.Activity, error)
	// Provides user's summaries with activity_date in [from, to), oldest first
	GetByUserAndDateRange(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]*entity.Activity, error)
	// Computes per-field arithmetic means over all of the user's rows.
	// Zero rows is not an error: all averages come back 0
	GetAverages(ctx context.Context, uid uuid.UUID) (*entity.ActivityAverages, error)
}

// Repositories is the set handed to a unit-of-work callback, all bound
// to the same transaction.
type Repositories struct {
	Users      UsersRepositoryI
	Workouts   WorkoutsRepositoryI
	Activities ActivitiesRepositoryI
}

type UnitOfWorkI interface {
	// Runs fn inside one database transaction. Commit on nil return,
	// rollback otherwise.
	Do(ctx context.Context, fn func(repos *Repositories) error) error
}

type DBConfig interface {
	ConnString() string
}

// Querier is the query surface shared by pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgConnection interface {
	Querier
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
