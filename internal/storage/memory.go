package storage

import (
	"context"
	"fmt"
	"sync"

	"roomrelay/internal/protocol"
)

// MemoryList is an in-process relay.ListStore with the same positional
// semantics as RedisList. Used in tests and as a stand-in when no Redis
// address is configured but persistence behavior is exercised.
type MemoryList struct {
	mu    sync.Mutex
	rooms []protocol.Room
}

func NewMemoryList() *MemoryList {
	return &MemoryList{}
}

func (s *MemoryList) Append(_ context.Context, room protocol.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = append(s.rooms, room)
	return nil
}

func (s *MemoryList) ReadAll(_ context.Context) ([]protocol.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Room, len(s.rooms))
	copy(out, s.rooms)
	return out, nil
}

func (s *MemoryList) ReplaceAt(_ context.Context, index int, room protocol.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.rooms) {
		return fmt.Errorf("index %d out of range", index)
	}
	s.rooms[index] = room
	return nil
}

func (s *MemoryList) DeleteAt(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.rooms) {
		return fmt.Errorf("index %d out of range", index)
	}
	s.rooms = append(s.rooms[:index], s.rooms[index+1:]...)
	return nil
}
