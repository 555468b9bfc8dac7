package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rowcook/internal/bookkeeper"
	"github.com/roach88/rowcook/internal/store"
)

// BackendOptions selects where identifier mappings live.
type BackendOptions struct {
	Database    string // SQLite path
	Postgres    string // Postgres DSN
	Redis       string // Redis address
	RedisPrefix string
	IDs         string // "uuid" | "sequence"
}

// ValidIDKinds defines the allowed --ids values.
var ValidIDKinds = []string{"uuid", "sequence"}

func addBackendFlags(cmd *cobra.Command, opts *BackendOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite mapping database")
	cmd.Flags().StringVar(&opts.Postgres, "postgres", "", "Postgres DSN for the mapping database")
	cmd.Flags().StringVar(&opts.Redis, "redis", "", "Redis address (host:port) for mappings")
	cmd.Flags().StringVar(&opts.RedisPrefix, "redis-prefix", bookkeeper.DefaultRedisPrefix, "Redis key prefix")
	cmd.Flags().StringVar(&opts.IDs, "ids", "uuid", "target identifier kind for new mappings (uuid|sequence)")
	cmd.MarkFlagsMutuallyExclusive("db", "postgres", "redis")
	cmd.MarkFlagsOneRequired("db", "postgres", "redis")
}

func (o *BackendOptions) allocator() (bookkeeper.Allocator, error) {
	switch o.IDs {
	case "uuid":
		return bookkeeper.UUIDAllocator{}, nil
	case "sequence":
		return bookkeeper.NewSequenceAllocator(), nil
	default:
		return nil, fmt.Errorf("invalid --ids %q: must be one of %v", o.IDs, ValidIDKinds)
	}
}

// openBooks opens the selected backend with alloc minting new targets.
// The returned close function releases it.
func openBooks(ctx context.Context, o *BackendOptions, alloc bookkeeper.Allocator) (bookkeeper.BookKeeper, func() error, error) {
	switch {
	case o.Database != "":
		slog.Debug("opening database", "path", o.Database)
		s, err := store.Open(o.Database)
		if err != nil {
			return nil, nil, err
		}
		return store.NewBooks(ctx, s, alloc), s.Close, nil

	case o.Postgres != "":
		slog.Debug("opening postgres")
		s, err := store.OpenPostgres(o.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return store.NewBooks(ctx, s, alloc), s.Close, nil

	case o.Redis != "":
		slog.Debug("connecting to redis", "addr", o.Redis)
		r := bookkeeper.NewRedis(bookkeeper.RedisOptions{
			Addr:      o.Redis,
			Prefix:    o.RedisPrefix,
			Allocator: alloc,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := r.Ping(pingCtx); err != nil {
			_ = r.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return r, r.Close, nil

	default:
		return nil, nil, errors.New("one of --db, --postgres or --redis is required")
	}
}

// openStore opens the SQL backend only.
func openStore(o *BackendOptions) (*store.Store, error) {
	switch {
	case o.Database != "":
		return store.Open(o.Database)
	case o.Postgres != "":
		return store.OpenPostgres(o.Postgres)
	default:
		return nil, errors.New("one of --db or --postgres is required")
	}
}
