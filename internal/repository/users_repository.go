package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/pulse/internal/error_values"
	"github.com/limbo/pulse/pkg/cleanup"
	"github.com/limbo/pulse/pkg/entity"
)

type UsersRepository struct {
	conn Querier
}

func NewUsersRepo(cfg DBConfig) *UsersRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for usersRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for usersRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &UsersRepository{
		conn: pool,
	}
}

func NewUsersRepoWithConn(conn Querier) *UsersRepository {
	return &UsersRepository{
		conn: conn,
	}
}

func (ur *UsersRepository) Create(ctx context.Context, user *entity.User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	_, err := ur.conn.Exec(ctx,
		`INSERT INTO users (name, password_hash, daily_move_goal, daily_exercise_goal, daily_stand_goal)
		VALUES ($1, $2, $3, $4, $5);`,
		user.Name,
		user.PasswordHash,
		user.DailyMoveGoal,
		user.DailyExerciseGoal,
		user.DailyStandGoal,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// Unique violation
			case "23505":
				return errorvalues.ErrUserExists
			}
		}
		return errors.New("creating user db error: " + err.Error())
	}
	return nil
}

func (ur *UsersRepository) FindByName(ctx context.Context, name string) (*entity.User, error) {
	var user entity.User
	row := ur.conn.QueryRow(ctx,
		`SELECT id, name, password_hash, daily_move_goal, daily_exercise_goal, daily_stand_goal
		FROM users WHERE name = $1;`, name)
	if err := row.Scan(&user.ID, &user.Name, &user.PasswordHash,
		&user.DailyMoveGoal, &user.DailyExerciseGoal, &user.DailyStandGoal); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("searching user by name error: " + err.Error())
	}
	return &user, nil
}

func (ur *UsersRepository) FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error) {
	var user entity.User
	row := ur.conn.QueryRow(ctx,
		`SELECT id, name, password_hash, daily_move_goal, daily_exercise_goal, daily_stand_goal
		FROM users WHERE id = $1;`, uid)
	if err := row.Scan(&user.ID, &user.Name, &user.PasswordHash,
		&user.DailyMoveGoal, &user.DailyExerciseGoal, &user.DailyStandGoal); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("searching user by id error: " + err.Error())
	}
	return &user, nil
}

func (ur *UsersRepository) GetGoalsForUpdate(ctx context.Context, uid uuid.UUID) (*entity.Goals, error) {
	var goals entity.Goals
	row := ur.conn.QueryRow(ctx,
		`SELECT daily_move_goal, daily_exercise_goal, daily_stand_goal
		FROM users WHERE id = $1 FOR UPDATE;`, uid)
	if err := row.Scan(&goals.Move, &goals.Exercise, &goals.Stand); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("locking user goals error: " + err.Error())
	}
	return &goals, nil
}

func (ur *UsersRepository) GetGoals(ctx context.Context, uid uuid.UUID) (*entity.Goals, error) {
	var goals entity.Goals
	row := ur.conn.QueryRow(ctx,
		`SELECT daily_move_goal, daily_exercise_goal, daily_stand_goal
		FROM users WHERE id = $1;`, uid)
	if err := row.Scan(&goals.Move, &goals.Exercise, &goals.Stand); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("getting user goals error: " + err.Error())
	}
	return &goals, nil
}

func (ur *UsersRepository) UpdateGoals(ctx context.Context, uid uuid.UUID, goals *entity.Goals) error {
	ct, err := ur.conn.Exec(ctx,
		`UPDATE users SET daily_move_goal = $1, daily_exercise_goal = $2, daily_stand_goal = $3 WHERE id = $4;`,
		goals.Move,
		goals.Exercise,
		goals.Stand,
		uid,
	)
	if err != nil {
		return errors.New("updating user goals error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrUserNotFound
	}
	return nil
}

func (ur *UsersRepository) Delete(ctx context.Context, uid uuid.UUID) error {
	ct, err := ur.conn.Exec(ctx, `DELETE FROM users WHERE id = $1;`, uid)
	if err != nil {
		return errors.New("deleting user error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrUserNotFound
	}
	return nil
}
