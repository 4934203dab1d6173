package relay

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"roomrelay/internal/metrics"
	"roomrelay/internal/protocol"
)

// ListStore is the narrow durable-store collaborator: a positional list
// of room records. The Store is its only consumer and serializes every
// find-index-then-mutate sequence behind its journal, so implementations
// do not need their own index bookkeeping.
type ListStore interface {
	Append(ctx context.Context, room protocol.Room) error
	ReadAll(ctx context.Context) ([]protocol.Room, error)
	ReplaceAt(ctx context.Context, index int, room protocol.Room) error
	DeleteAt(ctx context.Context, index int) error
}

const journalBuffer = 1024

type journalKind int

const (
	journalAppend journalKind = iota
	journalReplace
	journalDelete
)

type journalOp struct {
	kind journalKind
	id   string
	room protocol.Room
}

// Store owns room lifecycle: name, admin, member set and message log per
// room. Every mutation is one critical section: lookup, mutate and
// write-back never interleave with another mutation of the same room.
// Durable writes go through a single journal goroutine that applies ops
// in commit order, keeping network I/O out of the store mutex.
type Store struct {
	log        *slog.Logger
	maxHistory int

	mu    sync.Mutex
	rooms map[string]*roomState
	order []string // room ids in insertion order

	journal chan journalOp
	drained chan struct{}
}

type roomState struct {
	room protocol.Room
	// appended counts every message ever appended, so positions stay
	// stable when the history cap trims old entries.
	appended int
}

// NewStore creates a Store. ls may be nil to disable persistence;
// otherwise existing rooms are rehydrated from it and subsequent
// mutations are journaled back. maxHistory caps the in-memory log per
// room (0 means unlimited).
func NewStore(ctx context.Context, log *slog.Logger, maxHistory int, ls ListStore) (*Store, error) {
	s := &Store{
		log:        log,
		maxHistory: maxHistory,
		rooms:      make(map[string]*roomState),
	}

	if ls == nil {
		return s, nil
	}

	existing, err := ls.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read rooms: %w", err)
	}
	index := make(map[string]int, len(existing))
	for i, room := range existing {
		s.rooms[room.ID] = &roomState{room: room, appended: len(room.Messages)}
		s.order = append(s.order, room.ID)
		index[room.ID] = i
	}
	metrics.RoomsActive.Set(float64(len(s.rooms)))

	s.journal = make(chan journalOp, journalBuffer)
	s.drained = make(chan struct{})
	go s.drainJournal(ls, index, len(existing))
	return s, nil
}

// Close flushes and stops the journal. Safe on a store without
// persistence.
func (s *Store) Close() {
	if s.journal == nil {
		return
	}
	close(s.journal)
	<-s.drained
}

// drainJournal applies journaled mutations to the ListStore in the order
// they committed in memory. It owns the only id→index mapping, so a
// positional replace or delete is never split across critical sections.
func (s *Store) drainJournal(ls ListStore, index map[string]int, size int) {
	defer close(s.drained)
	ctx := context.Background()
	for op := range s.journal {
		switch op.kind {
		case journalAppend:
			if err := ls.Append(ctx, op.room); err != nil {
				s.log.Error("persist append", "room", op.id, "err", err)
				continue
			}
			index[op.id] = size
			size++
		case journalReplace:
			i, ok := index[op.id]
			if !ok {
				s.log.Error("persist replace: room not in durable index", "room", op.id)
				continue
			}
			if err := ls.ReplaceAt(ctx, i, op.room); err != nil {
				s.log.Error("persist replace", "room", op.id, "err", err)
			}
		case journalDelete:
			i, ok := index[op.id]
			if !ok {
				s.log.Error("persist delete: room not in durable index", "room", op.id)
				continue
			}
			if err := ls.DeleteAt(ctx, i); err != nil {
				s.log.Error("persist delete", "room", op.id, "err", err)
				continue
			}
			delete(index, op.id)
			for id, j := range index {
				if j > i {
					index[id] = j - 1
				}
			}
			size--
		}
	}
}

// record enqueues a durable mutation. Called with s.mu held so journal
// order matches commit order. The enqueue never blocks: when a stalled
// backend fills the buffer the op is dropped and logged, keeping store
// mutations decoupled from persistence latency. The in-memory state
// stays authoritative either way.
func (s *Store) record(kind journalKind, st *roomState) {
	if s.journal == nil {
		return
	}
	op := journalOp{kind: kind, id: st.room.ID}
	if kind != journalDelete {
		op.room = cloneRoom(st.room)
	}
	select {
	case s.journal <- op:
	default:
		s.log.Warn("journal full, dropping durable write", "room", op.id)
	}
}

// Create allocates a fresh room with the creator as sole member and
// admin. There is no uniqueness constraint on the display name.
func (s *Store) Create(name, creatorID string) protocol.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &roomState{room: protocol.Room{
		ID:    uuid.NewString(),
		Name:  name,
		Users: []string{creatorID},
		Admin: creatorID,
	}}
	s.rooms[st.room.ID] = st
	s.order = append(s.order, st.room.ID)
	s.record(journalAppend, st)
	metrics.RoomsActive.Inc()
	return cloneRoom(st.room)
}

// Get returns a copy of the room or ErrRoomNotFound.
func (s *Store) Get(roomID string) (protocol.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.rooms[roomID]
	if !ok {
		return protocol.Room{}, ErrRoomNotFound
	}
	return cloneRoom(st.room), nil
}

// Join adds userID to the room's member set. Joining twice is a no-op;
// the member set is unchanged after the first call.
func (s *Store) Join(roomID, userID string) (protocol.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.rooms[roomID]
	if !ok {
		return protocol.Room{}, ErrRoomNotFound
	}
	if !slices.Contains(st.room.Users, userID) {
		st.room.Users = append(st.room.Users, userID)
		s.record(journalReplace, st)
	}
	return cloneRoom(st.room), nil
}

// Leave removes userID from the room. When userID is the sole member the
// room is deleted and deleted=true; the returned room is the last
// snapshot before deletion. Leaving a room one is not a member of is an
// inconsistency: logged, treated as a no-op. If the admin leaves, the
// earliest remaining member by join order becomes admin.
func (s *Store) Leave(roomID, userID string) (room protocol.Room, deleted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaveLocked(roomID, userID)
}

func (s *Store) leaveLocked(roomID, userID string) (protocol.Room, bool, error) {
	st, ok := s.rooms[roomID]
	if !ok {
		return protocol.Room{}, false, ErrRoomNotFound
	}

	i := slices.Index(st.room.Users, userID)
	if i < 0 {
		s.log.Warn("leave by non-member, ignoring", "room", roomID, "user", userID)
		return cloneRoom(st.room), false, nil
	}

	if len(st.room.Users) == 1 {
		snapshot := cloneRoom(st.room)
		s.deleteLocked(st)
		return snapshot, true, nil
	}

	st.room.Users = slices.Delete(st.room.Users, i, i+1)
	if st.room.Admin == userID {
		st.room.Admin = st.room.Users[0]
	}
	s.record(journalReplace, st)
	return cloneRoom(st.room), false, nil
}

func (s *Store) deleteLocked(st *roomState) {
	delete(s.rooms, st.room.ID)
	if i := slices.Index(s.order, st.room.ID); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	s.record(journalDelete, st)
	metrics.RoomsActive.Dec()
}

// AppendMessage appends to the room's log and returns the updated room
// snapshot and the message's position. Positions are the append index
// from the room's start, total-ordered per room.
func (s *Store) AppendMessage(roomID, senderID, text string) (protocol.Room, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.rooms[roomID]
	if !ok {
		return protocol.Room{}, 0, ErrRoomNotFound
	}

	pos := st.appended
	st.appended++
	st.room.Messages = append(st.room.Messages, protocol.Message{By: senderID, Text: text})
	if s.maxHistory > 0 && len(st.room.Messages) > s.maxHistory {
		excess := len(st.room.Messages) - s.maxHistory
		st.room.Messages = st.room.Messages[excess:]
	}
	s.record(journalReplace, st)
	return cloneRoom(st.room), pos, nil
}

// ListRooms returns a snapshot of all rooms in insertion order.
func (s *Store) ListRooms() []protocol.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Room, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneRoom(s.rooms[id].room))
	}
	return out
}

// RoomsWithMember returns the ids of every room userID belongs to.
func (s *Store) RoomsWithMember(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, id := range s.order {
		if slices.Contains(s.rooms[id].room.Users, userID) {
			ids = append(ids, id)
		}
	}
	return ids
}

// LeaveAll removes userID from every room it belongs to, one leave per
// room, all within a single critical section. It returns the rooms that
// were deleted because userID was their sole member.
func (s *Store) LeaveAll(userID string) []protocol.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	var memberOf []string
	for _, id := range s.order {
		if slices.Contains(s.rooms[id].room.Users, userID) {
			memberOf = append(memberOf, id)
		}
	}

	var deleted []protocol.Room
	for _, id := range memberOf {
		room, gone, err := s.leaveLocked(id, userID)
		if err != nil {
			continue
		}
		if gone {
			deleted = append(deleted, room)
		}
	}
	return deleted
}

// RemoveRoomsOwnedBy deletes every room whose admin is userID,
// regardless of remaining members. Distinct from Leave, which reassigns
// the admin. Returns the deleted rooms.
func (s *Store) RemoveRoomsOwnedBy(userID string) []protocol.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted []protocol.Room
	for _, id := range slices.Clone(s.order) {
		st := s.rooms[id]
		if st.room.Admin != userID {
			continue
		}
		deleted = append(deleted, cloneRoom(st.room))
		s.deleteLocked(st)
	}
	return deleted
}

// Len returns the number of rooms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

func cloneRoom(r protocol.Room) protocol.Room {
	r.Users = slices.Clone(r.Users)
	r.Messages = slices.Clone(r.Messages)
	return r
}
