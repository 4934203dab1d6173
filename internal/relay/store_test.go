package relay

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"roomrelay/internal/protocol"
	"roomrelay/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), testLogger(), 0, nil)
	require.NoError(t, err)
	return s
}

func TestStore_CreateThenGet(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	created := s.Create("lobby", "alice")
	req.NotEmpty(created.ID)
	req.Equal("lobby", created.Name)
	req.Equal([]string{"alice"}, created.Users)
	req.Equal("alice", created.Admin)
	req.Empty(created.Messages)

	got, err := s.Get(created.ID)
	req.NoError(err)
	req.Equal(created, got)
}

func TestStore_GetUnknownRoom(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(uuid.NewString())
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestStore_JoinIsIdempotent(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	room := s.Create("lobby", "alice")

	r1, err := s.Join(room.ID, "bob")
	req.NoError(err)
	req.Equal([]string{"alice", "bob"}, r1.Users)

	r2, err := s.Join(room.ID, "bob")
	req.NoError(err)
	req.Equal([]string{"alice", "bob"}, r2.Users)
}

func TestStore_JoinUnknownRoom(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Join(uuid.NewString(), "bob")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestStore_LeaveReassignsAdminByJoinOrder(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	room := s.Create("lobby", "alice")
	_, err := s.Join(room.ID, "bob")
	req.NoError(err)
	_, err = s.Join(room.ID, "carol")
	req.NoError(err)

	// Admin leaves: the earliest remaining member takes over.
	updated, deleted, err := s.Leave(room.ID, "alice")
	req.NoError(err)
	req.False(deleted)
	req.Equal([]string{"bob", "carol"}, updated.Users)
	req.Equal("bob", updated.Admin)
	req.Contains(updated.Users, updated.Admin)
}

func TestStore_LeaveNonAdminKeepsAdmin(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	room := s.Create("lobby", "alice")
	_, err := s.Join(room.ID, "bob")
	req.NoError(err)

	updated, deleted, err := s.Leave(room.ID, "bob")
	req.NoError(err)
	req.False(deleted)
	req.Equal([]string{"alice"}, updated.Users)
	req.Equal("alice", updated.Admin)
}

func TestStore_SoleMemberLeaveDeletesRoom(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	room := s.Create("lobby", "alice")

	snapshot, deleted, err := s.Leave(room.ID, "alice")
	req.NoError(err)
	req.True(deleted)
	req.Equal(room.ID, snapshot.ID)

	_, err = s.Get(room.ID)
	req.ErrorIs(err, ErrRoomNotFound)
	req.Empty(s.ListRooms())
}

func TestStore_LeaveByNonMemberIsNoOp(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	room := s.Create("lobby", "alice")

	updated, deleted, err := s.Leave(room.ID, "mallory")
	req.NoError(err)
	req.False(deleted)
	req.Equal([]string{"alice"}, updated.Users)
}

func TestStore_LeaveUnknownRoom(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Leave(uuid.NewString(), "alice")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestStore_AppendMessagePositions(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	room := s.Create("lobby", "alice")

	updated, pos, err := s.AppendMessage(room.ID, "alice", "hi")
	req.NoError(err)
	req.Equal(0, pos)
	req.Len(updated.Messages, 1)
	req.Equal("alice", updated.Messages[0].By)
	req.Equal("hi", updated.Messages[0].Text)

	_, pos, err = s.AppendMessage(room.ID, "alice", "again")
	req.NoError(err)
	req.Equal(1, pos)
}

func TestStore_AppendMessageUnknownRoom(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.AppendMessage(uuid.NewString(), "alice", "hi")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestStore_HistoryCapKeepsPositionsCounting(t *testing.T) {
	req := require.New(t)
	s, err := NewStore(context.Background(), testLogger(), 2, nil)
	req.NoError(err)
	room := s.Create("lobby", "alice")

	for i := 0; i < 5; i++ {
		_, pos, err := s.AppendMessage(room.ID, "alice", "msg")
		req.NoError(err)
		req.Equal(i, pos)
	}

	got, err := s.Get(room.ID)
	req.NoError(err)
	req.Len(got.Messages, 2)
}

func TestStore_ListRoomsInsertionOrder(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	a := s.Create("a", "alice")
	b := s.Create("b", "alice")
	c := s.Create("c", "alice")

	rooms := s.ListRooms()
	req.Len(rooms, 3)
	req.Equal([]string{a.ID, b.ID, c.ID}, []string{rooms[0].ID, rooms[1].ID, rooms[2].ID})
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	room := s.Create("lobby", "alice")

	got, err := s.Get(room.ID)
	req.NoError(err)
	got.Users[0] = "mallory"
	got.Admin = "mallory"

	fresh, err := s.Get(room.ID)
	req.NoError(err)
	req.Equal([]string{"alice"}, fresh.Users)
	req.Equal("alice", fresh.Admin)
}

func TestStore_RemoveRoomsOwnedBy(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	a := s.Create("a", "alice")
	b := s.Create("b", "bob")
	c := s.Create("c", "alice")
	_, err := s.Join(c.ID, "bob")
	req.NoError(err)

	deleted := s.RemoveRoomsOwnedBy("alice")
	req.Len(deleted, 2)

	// Rooms go even with other members remaining, unlike Leave.
	_, err = s.Get(a.ID)
	req.ErrorIs(err, ErrRoomNotFound)
	_, err = s.Get(c.ID)
	req.ErrorIs(err, ErrRoomNotFound)
	_, err = s.Get(b.ID)
	req.NoError(err)
}

func TestStore_LeaveAll(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	solo := s.Create("solo", "alice")
	shared := s.Create("shared", "alice")
	_, err := s.Join(shared.ID, "bob")
	req.NoError(err)
	other := s.Create("other", "bob")

	deleted := s.LeaveAll("alice")
	req.Len(deleted, 1)
	req.Equal(solo.ID, deleted[0].ID)

	// Shared room survives with bob as the new admin.
	got, err := s.Get(shared.ID)
	req.NoError(err)
	req.Equal([]string{"bob"}, got.Users)
	req.Equal("bob", got.Admin)

	// Rooms alice never joined are untouched.
	got, err = s.Get(other.ID)
	req.NoError(err)
	req.Equal([]string{"bob"}, got.Users)

	req.Empty(s.RoomsWithMember("alice"))
}

func TestStore_ConcurrentJoinsLoseNoUpdates(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	room := s.Create("lobby", "alice")

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Join(room.ID, uuid.NewString())
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(room.ID)
	req.NoError(err)
	req.Len(got.Users, n+1)

	seen := make(map[string]struct{}, len(got.Users))
	for _, u := range got.Users {
		seen[u] = struct{}{}
	}
	req.Len(seen, n+1)
	req.Contains(got.Users, got.Admin)
}

func TestStore_AdminAlwaysMemberAfterMutations(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	room := s.Create("lobby", "u0")
	users := []string{"u1", "u2", "u3"}
	for _, u := range users {
		_, err := s.Join(room.ID, u)
		req.NoError(err)
		got, err := s.Get(room.ID)
		req.NoError(err)
		req.Contains(got.Users, got.Admin)
	}
	for _, u := range []string{"u0", "u2", "u1"} {
		updated, deleted, err := s.Leave(room.ID, u)
		req.NoError(err)
		req.False(deleted)
		req.Contains(updated.Users, updated.Admin)
		req.NotEmpty(updated.Users)
	}
}

func TestStore_JournalMirrorsMutations(t *testing.T) {
	req := require.New(t)
	list := storage.NewMemoryList()
	s, err := NewStore(context.Background(), testLogger(), 0, list)
	req.NoError(err)

	a := s.Create("a", "alice")
	b := s.Create("b", "bob")
	c := s.Create("c", "carol")
	_, err = s.Join(b.ID, "dave")
	req.NoError(err)
	_, _, err = s.AppendMessage(c.ID, "carol", "hello")
	req.NoError(err)
	_, deleted, err := s.Leave(a.ID, "alice")
	req.NoError(err)
	req.True(deleted)

	want := s.ListRooms()
	s.Close() // flushes the journal

	persisted, err := list.ReadAll(context.Background())
	req.NoError(err)
	req.Equal(want, persisted)
}

// stalledList blocks every write until its gate is closed, standing in
// for an unresponsive durable backend.
type stalledList struct {
	gate    chan struct{}
	mu      sync.Mutex
	appends int
}

func newStalledList() *stalledList {
	return &stalledList{gate: make(chan struct{})}
}

func (l *stalledList) Append(_ context.Context, _ protocol.Room) error {
	<-l.gate
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appends++
	return nil
}

func (l *stalledList) ReadAll(_ context.Context) ([]protocol.Room, error) { return nil, nil }

func (l *stalledList) ReplaceAt(_ context.Context, _ int, _ protocol.Room) error {
	<-l.gate
	return nil
}

func (l *stalledList) DeleteAt(_ context.Context, _ int) error {
	<-l.gate
	return nil
}

func (l *stalledList) appended() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appends
}

func TestStore_StalledBackendNeverBlocksMutations(t *testing.T) {
	req := require.New(t)
	list := newStalledList()
	s, err := NewStore(context.Background(), testLogger(), 0, list)
	req.NoError(err)

	// Far more mutations than the journal buffer holds while the backend
	// accepts nothing. Every Create must still return immediately; the
	// overflow is dropped, not queued behind the stalled write.
	const n = journalBuffer + 100
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			s.Create("room", "alice")
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("store mutations blocked on the stalled backend")
	}
	req.Equal(n, s.Len())

	close(list.gate)
	s.Close()

	// The backend caught up on what the journal held; the rest was shed.
	req.Greater(list.appended(), 0)
	req.LessOrEqual(list.appended(), journalBuffer+1)
}

func TestStore_RehydratesFromListStore(t *testing.T) {
	req := require.New(t)
	list := storage.NewMemoryList()

	s1, err := NewStore(context.Background(), testLogger(), 0, list)
	req.NoError(err)
	room := s1.Create("lobby", "alice")
	_, err = s1.Join(room.ID, "bob")
	req.NoError(err)
	_, _, err = s1.AppendMessage(room.ID, "bob", "hi")
	req.NoError(err)
	s1.Close()

	s2, err := NewStore(context.Background(), testLogger(), 0, list)
	req.NoError(err)
	got, err := s2.Get(room.ID)
	req.NoError(err)
	req.Equal([]string{"alice", "bob"}, got.Users)
	req.Len(got.Messages, 1)

	// Positional replaces after a restart land on the right entry.
	other := s2.Create("other", "carol")
	_, err = s2.Join(room.ID, "carol")
	req.NoError(err)
	s2.Close()

	persisted, err := list.ReadAll(context.Background())
	req.NoError(err)
	req.Len(persisted, 2)
	req.Equal(room.ID, persisted[0].ID)
	req.Equal([]string{"alice", "bob", "carol"}, persisted[0].Users)
	req.Equal(other.ID, persisted[1].ID)
}
