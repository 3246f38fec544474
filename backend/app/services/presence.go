package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const presenceKeyPrefix = "machine:lastseen:"

// PresenceService tracks which machines have reported recently. Keys expire
// after the configured offline window, so membership of the key space is the
// online set. A nil redis client disables tracking.
type PresenceService struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

func NewPresenceService(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *PresenceService {
	return &PresenceService{rdb: rdb, ttl: ttl, log: log}
}

// Touch marks a machine as seen now. Best-effort; a cache failure never
// affects report processing.
func (s *PresenceService) Touch(ctx context.Context, machineID string) {
	if s.rdb == nil || machineID == "" {
		return
	}
	if err := s.rdb.Set(ctx, presenceKeyPrefix+machineID, time.Now().UTC().Format(time.RFC3339), s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("machine", machineID).Msg("presence touch failed")
	}
}

// Online returns the ids of machines seen within the offline window.
func (s *PresenceService) Online(ctx context.Context) ([]string, error) {
	if s.rdb == nil {
		return nil, nil
	}
	var (
		ids    []string
		cursor uint64
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, presenceKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			ids = append(ids, key[len(presenceKeyPrefix):])
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}

// LastSeen returns the recorded last report time for a machine, or zero time
// when the machine is outside the online window.
func (s *PresenceService) LastSeen(ctx context.Context, machineID string) (time.Time, error) {
	if s.rdb == nil {
		return time.Time{}, nil
	}
	val, err := s.rdb.Get(ctx, presenceKeyPrefix+machineID).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, val)
}
