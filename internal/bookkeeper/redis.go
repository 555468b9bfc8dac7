package bookkeeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roach88/rowcook/internal/ir"
)

// DefaultRedisPrefix namespaces the mapping hashes.
const DefaultRedisPrefix = "rowcook:books"

// Redis is a BookKeeper backed by one Redis hash per entity type:
//
//	HASH <prefix>:<entity_type>   field i:<n> | u:<s>   value i:<n> | u:<s>
//
// Authoritative allocation uses HSETNX, so the first writer wins and every
// concurrent caller (in any process) reads back the same target identifier.
// Resolved mappings are cached locally; Reset clears that cache only.
//
// With a Seeder allocator each target is also claimed in
//
//	HASH <prefix>:<entity_type>:targets   field i:<n>   value <source field>
//
// before it is mapped, so one target never serves two sources. The allocator
// is seeded from the highest stored integer target on first use and again
// whenever a claim is lost.
type Redis struct {
	client  *redis.Client
	alloc   Allocator
	prefix  string
	timeout time.Duration

	mu     sync.RWMutex
	cache  map[ir.EntityType]map[key]ir.ID
	seeded map[ir.EntityType]bool
}

// maxClaimAttempts bounds how often a lost target claim is retried.
const maxClaimAttempts = 8

// RedisOptions configures NewRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Prefix defaults to DefaultRedisPrefix.
	Prefix string
	// Timeout bounds each Redis round trip. Defaults to 5 seconds.
	Timeout time.Duration
	// Allocator defaults to UUIDAllocator.
	Allocator Allocator
}

// NewRedis creates a Redis-backed BookKeeper.
func NewRedis(opts RedisOptions) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	alloc := opts.Allocator
	if alloc == nil {
		alloc = UUIDAllocator{}
	}
	return &Redis{
		client:  rdb,
		alloc:   alloc,
		prefix:  prefix,
		timeout: timeout,
		cache:   make(map[ir.EntityType]map[key]ir.ID),
		seeded:  make(map[ir.EntityType]bool),
	}
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// ResolveID implements BookKeeper. Redis errors are logged and reported as a
// miss.
func (r *Redis) ResolveID(etype ir.EntityType, id ir.ID, authoritative bool) (ir.ID, bool) {
	if id == nil {
		return nil, false
	}
	k := keyOf(id)
	if target, ok := r.cached(etype, k); ok {
		return target, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	hash := r.hashKey(etype)
	field := encodeID(id)

	val, err := r.client.HGet(ctx, hash, field).Result()
	switch {
	case err == nil:
		return r.remember(etype, k, val)
	case !errors.Is(err, redis.Nil):
		slog.Warn("redis lookup failed", "entity_type", etype, "id", id.Text(), "error", err)
		return nil, false
	case !authoritative:
		return nil, false
	}

	candidate, err := r.allocate(ctx, etype, id)
	if err != nil {
		slog.Warn("redis allocation failed", "entity_type", etype, "id", id.Text(), "error", err)
		return nil, false
	}
	if _, err := r.client.HSetNX(ctx, hash, field, candidate).Result(); err != nil {
		slog.Warn("redis allocation failed", "entity_type", etype, "id", id.Text(), "error", err)
		return nil, false
	}

	// Read back: a concurrent writer may have won the HSETNX race.
	val, err = r.client.HGet(ctx, hash, field).Result()
	if err != nil {
		slog.Warn("redis read-back failed", "entity_type", etype, "id", id.Text(), "error", err)
		return nil, false
	}
	return r.remember(etype, k, val)
}

// allocate mints the encoded target for a new mapping of id. Seeder
// allocators are seeded and their targets claimed first.
func (r *Redis) allocate(ctx context.Context, etype ir.EntityType, id ir.ID) (string, error) {
	seeder, ok := r.alloc.(Seeder)
	if !ok {
		return encodeID(r.alloc.Allocate(etype, id)), nil
	}

	if !r.isSeeded(etype) {
		if err := r.seed(ctx, seeder, etype); err != nil {
			return "", err
		}
	}
	claims := r.claimsKey(etype)
	for range maxClaimAttempts {
		candidate := encodeID(r.alloc.Allocate(etype, id))
		won, err := r.client.HSetNX(ctx, claims, candidate, encodeID(id)).Result()
		if err != nil {
			return "", fmt.Errorf("claim target: %w", err)
		}
		if won {
			return candidate, nil
		}
		// Another process holds this target: move past its high-water mark.
		if err := r.seed(ctx, seeder, etype); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("claim target: lost %d attempts", maxClaimAttempts)
}

// seed raises seeder above every integer target stored or claimed for etype.
func (r *Redis) seed(ctx context.Context, seeder Seeder, etype ir.EntityType) error {
	targets, err := r.client.HVals(ctx, r.hashKey(etype)).Result()
	if err != nil {
		return fmt.Errorf("seed allocator: %w", err)
	}
	claimed, err := r.client.HKeys(ctx, r.claimsKey(etype)).Result()
	if err != nil {
		return fmt.Errorf("seed allocator: %w", err)
	}

	var floor uint64
	for _, encoded := range append(targets, claimed...) {
		if id, err := decodeID(encoded); err == nil {
			if n, ok := id.(ir.IntID); ok && uint64(n) > floor {
				floor = uint64(n)
			}
		}
	}
	seeder.Seed(etype, floor)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeded[etype] = true
	return nil
}

func (r *Redis) isSeeded(etype ir.EntityType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seeded[etype]
}

// Reset implements BookKeeper. Durable mappings in Redis are kept.
func (r *Redis) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[ir.EntityType]map[key]ir.ID)
	r.seeded = make(map[ir.EntityType]bool)
}

// Purge deletes the durable mapping hash for each entity type.
func (r *Redis) Purge(ctx context.Context, etypes ...ir.EntityType) error {
	if len(etypes) == 0 {
		return nil
	}
	keys := make([]string, 0, 2*len(etypes))
	for _, etype := range etypes {
		keys = append(keys, r.hashKey(etype), r.claimsKey(etype))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("purge mappings: %w", err)
	}
	r.Reset()
	return nil
}

func (r *Redis) hashKey(etype ir.EntityType) string {
	return r.prefix + ":" + etype
}

func (r *Redis) claimsKey(etype ir.EntityType) string {
	return r.hashKey(etype) + ":targets"
}

func (r *Redis) cached(etype ir.EntityType, k key) (ir.ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target, ok := r.cache[etype][k]
	return target, ok
}

func (r *Redis) remember(etype ir.EntityType, k key, encoded string) (ir.ID, bool) {
	target, err := decodeID(encoded)
	if err != nil {
		slog.Warn("redis mapping is corrupt", "entity_type", etype, "value", encoded, "error", err)
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache[etype] == nil {
		r.cache[etype] = make(map[key]ir.ID)
	}
	r.cache[etype][k] = target
	return target, true
}

// encodeID renders an id as "i:<n>" or "u:<s>".
func encodeID(id ir.ID) string {
	k := keyOf(id)
	return string(k.kind) + ":" + k.value
}

// decodeID parses the output of encodeID.
func decodeID(s string) (ir.ID, error) {
	kind, value, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("missing kind prefix in %q", s)
	}
	switch kind {
	case "i":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer id %q: %w", value, err)
		}
		return ir.IntID(n), nil
	case "u":
		return ir.UUID(value), nil
	default:
		return nil, fmt.Errorf("unknown id kind %q", kind)
	}
}
