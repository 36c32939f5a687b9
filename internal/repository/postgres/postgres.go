package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/gfdmit/web-forum/posts-api/config"
	"github.com/gfdmit/web-forum/posts-api/internal/repository"
)

type txKey struct{}

// DB owns the connection pool and the transaction boundaries. The entity
// repositories in this package share it.
type DB struct {
	db *sqlx.DB
}

func New(conf config.Postgres) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Timeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", conf.DSN())
	if err != nil {
		return nil, fmt.Errorf("sqlx.Connect: %v", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)

	if err := migrateUp(db, conf); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

// migrateUp runs on a database/sql handle because the migration driver does
// not share the application's transactions.
func migrateUp(db *sqlx.DB, conf config.Postgres) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres.WithInstance: %v", err)
	}
	migrations := fmt.Sprintf("file://%v", conf.Migrations)
	m, err := migrate.NewWithDatabaseInstance(migrations, conf.DB, driver)
	if err != nil {
		return fmt.Errorf("migrate.NewWithDatabaseInstance: %v", err)
	}
	log.Println("[POSTGRES] applying migrations...")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("[POSTGRES] nothing to migrate")
			return nil
		}
		return fmt.Errorf("error when migrating: %v", err)
	}
	log.Println("[POSTGRES] migrated successfully!")
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	var one int
	if err := d.db.GetContext(ctx, &one, "SELECT 1"); err != nil {
		return fmt.Errorf("db.Ping: %w", err)
	}
	return nil
}

// WithinTx runs fn inside a transaction stored on the context. Nested calls
// reuse the outer transaction.
func (d *DB) WithinTx(ctx context.Context, reason string, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}

	committed := false
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[POSTGRES] panic in transaction (%s): %v\n%s", reason, p, debug.Stack())
			tx.Rollback()
			panic(p)
		}
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("[POSTGRES] transaction rollback error: (%s) %v", reason, rbErr)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction (%s): %w", reason, err)
	}
	committed = true

	return nil
}

type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func (d *DB) conn(ctx context.Context) queryer {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return d.db
}

// mapError translates driver errors into the repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Constraint)
		case "23503":
			return fmt.Errorf("%w: %s", repository.ErrReference, pqErr.Constraint)
		}
	}
	return err
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
