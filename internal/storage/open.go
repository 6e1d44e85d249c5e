package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/flowcross/internal/dbx"
	"github.com/dmitrijs2005/flowcross/internal/filex"
	"github.com/dmitrijs2005/flowcross/internal/logging"
	"github.com/dmitrijs2005/flowcross/internal/migrations"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver selects the storage backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
	DriverMemory   Driver = "memory"
)

// Options configures Open. DSN is used by the SQL drivers, the Redis fields
// by the redis driver only.
type Options struct {
	Driver Driver
	DSN    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisHash     string

	Logger logging.Logger
}

// Handle is an opened repository together with the resources behind it.
type Handle struct {
	Repository
	closeFn func() error
}

// Close releases the underlying connection, if any.
func (h *Handle) Close() error {
	if h.closeFn == nil {
		return nil
	}
	return h.closeFn()
}

// Open connects to the configured backend and, for SQL drivers, applies the
// embedded migrations.
func Open(ctx context.Context, opts Options) (*Handle, error) {
	switch opts.Driver {
	case DriverMemory:
		return &Handle{Repository: NewMemoryRepository()}, nil

	case DriverSQLite, "":
		if isFilePath(opts.DSN) {
			if err := filex.EnsureParentDir(opts.DSN); err != nil {
				return nil, err
			}
		}
		db, err := sql.Open("sqlite", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// One connection keeps read-modify-write transactions from hitting
		// SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		return openSQL(ctx, db, dbx.DialectSQLite, "sqlite", opts.Logger)

	case DriverPostgres:
		db, err := sql.Open("pgx", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return openSQL(ctx, db, dbx.DialectPostgres, "postgres", opts.Logger)

	case DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", opts.RedisAddr, err)
		}

		hash := opts.RedisHash
		if hash == "" {
			hash = "flowcross"
		}
		return &Handle{Repository: NewRedisRepository(client, hash), closeFn: client.Close}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

// isFilePath reports whether a SQLite DSN names a plain file rather than an
// in-memory database or a file: URI.
func isFilePath(dsn string) bool {
	return dsn != "" && !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:")
}

func openSQL(ctx context.Context, db *sql.DB, dialect dbx.Dialect, dir string, logger logging.Logger) (*Handle, error) {
	if err := RunMigrations(ctx, db, dialect, dir, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Handle{Repository: NewSQLRepository(db, dialect), closeFn: db.Close}, nil
}

// RunMigrations applies the embedded migrations in dir for dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect, dir string, logger logging.Logger) error {
	goose.SetBaseFS(migrations.Migrations)
	if logger != nil {
		goose.SetLogger(gooseLogger{l: logger})
	}

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through the application logger.
type gooseLogger struct {
	l logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.l.Info(context.Background(), fmt.Sprintf(format, v...), "component", "migrations")
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.l.Error(context.Background(), fmt.Sprintf(format, v...), "component", "migrations")
}
