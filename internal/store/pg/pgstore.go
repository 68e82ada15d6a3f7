package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"socialhub.dev/internal/social"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
	pgErrCheckViolation      = "23514"
)

var errNoDB = errors.New("database connection unavailable")

// Store owns the connection pool shared by the repositories. It is opened once
// at startup and closed on shutdown.
type Store struct {
	db *sql.DB
}

// PoolConfig bounds the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPool is used when Open receives a zero PoolConfig.
var DefaultPool = PoolConfig{
	MaxOpenConns:    20,
	MaxIdleConns:    10,
	ConnMaxLifetime: 30 * time.Minute,
	ConnMaxIdleTime: 5 * time.Minute,
}

// Open connects through the pgx stdlib driver and verifies the connection.
func Open(ctx context.Context, dsn string, pool PoolConfig) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if pool == (PoolConfig{}) {
		pool = DefaultPool
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing handle, e.g. one from sqlmock.
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() *UserRepo             { return &UserRepo{db: s.db} }
func (s *Store) Posts() *PostRepo             { return &PostRepo{db: s.db} }
func (s *Store) Comments() *CommentRepo       { return &CommentRepo{db: s.db} }
func (s *Store) Friendships() *FriendshipRepo { return &FriendshipRepo{db: s.db} }

// Stores returns every repository for social.NewService.
func (s *Store) Stores() social.Stores {
	return social.Stores{
		Users:       s.Users(),
		Posts:       s.Posts(),
		Comments:    s.Comments(),
		Friendships: s.Friendships(),
	}
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// classify maps constraint violations onto social errors.
func classify(err error) error {
	pgErr, ok := maybePgError(err)
	if !ok {
		return err
	}
	switch pgErr.Code {
	case pgErrUniqueViolation:
		return &social.Error{Kind: social.ErrConflict, Message: "Unique Constraint Error", Details: pgErr.Detail}
	case pgErrForeignKeyViolation:
		return &social.Error{Kind: social.ErrInvalidInput, Message: "Foreign Key Constraint Error", Details: pgErr.Detail}
	case pgErrCheckViolation:
		return &social.Error{Kind: social.ErrInvalidInput, Message: "Validation Error", Details: pgErr.Detail}
	}
	return err
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	if db == nil {
		return errNoDB
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return social.ErrNotFound
	}
	return nil
}

// exists runs a select exists(...) query.
func exists(ctx context.Context, db *sql.DB, query string, args ...any) (bool, error) {
	if db == nil {
		return false, errNoDB
	}
	var ok bool
	if err := db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
