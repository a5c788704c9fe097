// internal/store/redis.go
//
// Redis-backed session Store.
// Sessions are kept in a Memory store and written through to Redis as JSON
// snapshots, so a restarted server can pick up where players left off.
//
// Characteristics:
//   - Live sessions are served from memory; Redis is read only on a miss.
//   - Every Save and every Get refreshes the key's TTL.
//   - A miss in Redis (redis.Nil) maps to ErrNotFound.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/narharikale/globe/internal/game"
)

const keyPrefix = "globe:session:"

// RestoreFunc rebuilds a live session from a persisted snapshot.
type RestoreFunc func(game.Snapshot) *game.Session

// Redis is a write-through Store over a Memory cache.
type Redis struct {
	mem     *Memory
	client  *redis.Client
	ttl     time.Duration
	restore RestoreFunc
	logger  zerolog.Logger
}

// NewRedisStore wraps client. restore is typically (*game.Engine).Restore.
func NewRedisStore(client *redis.Client, ttl time.Duration, restore RestoreFunc, logger zerolog.Logger) *Redis {
	return &Redis{
		mem:     NewMemoryStore(ttl),
		client:  client,
		ttl:     ttl,
		restore: restore,
		logger:  logger,
	}
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *Redis) Save(ctx context.Context, s *game.Session) error {
	snap := s.Snapshot()
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	r.mem.put(snap.ID, s)
	if err := r.client.Set(ctx, keyPrefix+snap.ID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %q: %w", snap.ID, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id string) (*game.Session, error) {
	if s, err := r.mem.Get(ctx, id); err == nil {
		r.touch(ctx, id)
		return s, nil
	}

	raw, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", id, err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		r.logger.Warn().Err(err).Str("session", id).Msg("discarding unreadable session")
		_ = r.client.Del(ctx, keyPrefix+id).Err()
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}

	// Two requests may restore the same id concurrently; keep whichever landed first.
	r.mem.mu.Lock()
	if e, ok := r.mem.sessions[id]; ok {
		e.lastSeen = r.mem.now()
		r.mem.mu.Unlock()
		return e.sess, nil
	}
	s := r.restore(snap)
	r.mem.sessions[id] = &entry{sess: s, lastSeen: r.mem.now()}
	r.mem.mu.Unlock()

	r.touch(ctx, id)
	r.logger.Debug().Str("session", id).Msg("session restored from redis")
	return s, nil
}

// touch extends the key's TTL so reads keep the persisted copy alive as long
// as the in-memory one. Failures only cost durability and are logged.
func (r *Redis) touch(ctx context.Context, id string) {
	if err := r.client.Expire(ctx, keyPrefix+id, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("session", id).Msg("refresh session ttl")
	}
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	_ = r.mem.Delete(ctx, id)
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session %q: %w", id, err)
	}
	return nil
}
