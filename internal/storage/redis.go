package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"roomrelay/internal/protocol"
)

// deleteMark is written over a list element before LREM removes it;
// Redis lists have no delete-by-index.
const deleteMark = "__DELETE__"

// RedisList persists room records as JSON elements of a single Redis
// list. It implements relay.ListStore; the Room Store serializes all
// index lookups and positional mutations, so each method maps to one
// Redis list operation.
type RedisList struct {
	rdb *redis.Client
	key string
	log *slog.Logger
}

// NewRedisList connects to Redis and verifies connectivity.
func NewRedisList(ctx context.Context, addr string, db int, key string, log *slog.Logger) (*RedisList, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisList{rdb: rdb, key: key, log: log}, nil
}

func (s *RedisList) Append(ctx context.Context, room protocol.Room) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room: %w", err)
	}
	return s.rdb.RPush(ctx, s.key, raw).Err()
}

func (s *RedisList) ReadAll(ctx context.Context) ([]protocol.Room, error) {
	raws, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	rooms := make([]protocol.Room, 0, len(raws))
	for _, raw := range raws {
		var room protocol.Room
		if err := json.Unmarshal([]byte(raw), &room); err != nil {
			return nil, fmt.Errorf("decode room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (s *RedisList) ReplaceAt(ctx context.Context, index int, room protocol.Room) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room: %w", err)
	}
	return s.rdb.LSet(ctx, s.key, int64(index), raw).Err()
}

func (s *RedisList) DeleteAt(ctx context.Context, index int) error {
	if err := s.rdb.LSet(ctx, s.key, int64(index), deleteMark).Err(); err != nil {
		return err
	}
	return s.rdb.LRem(ctx, s.key, 1, deleteMark).Err()
}

// Close shuts down the Redis connection.
func (s *RedisList) Close() {
	if err := s.rdb.Close(); err != nil {
		s.log.Error("redis close", "err", err)
	}
}
