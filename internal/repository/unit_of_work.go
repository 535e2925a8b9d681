package repository

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/limbo/pulse/pkg/cleanup"
)

// PgUnitOfWork runs a callback with users/workouts/activities repositories
// bound to a single transaction. A workout mutation and its activity
// recompute go through here so either both commit or neither does.
type PgUnitOfWork struct {
	conn PgConnection
}

func NewPgUnitOfWork(cfg DBConfig) *PgUnitOfWork {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for unit of work error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for unit of work: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &PgUnitOfWork{
		conn: pool,
	}
}

func NewPgUnitOfWorkWithConn(conn PgConnection) *PgUnitOfWork {
	return &PgUnitOfWork{
		conn: conn,
	}
}

func (uow *PgUnitOfWork) Do(ctx context.Context, fn func(repos *Repositories) error) error {
	tx, err := uow.conn.Begin(ctx)
	if err != nil {
		return errors.New("beginning transaction error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	repos := &Repositories{
		Users:      NewUsersRepoWithConn(tx),
		Workouts:   NewWorkoutsRepoWithConn(tx),
		Activities: NewActivitiesRepoWithConn(tx),
	}
	if err = fn(repos); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing transaction error: " + err.Error())
	}
	return nil
}
