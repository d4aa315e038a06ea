package engine

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Narvasiddhartha/AnonChat/internal/entity"
)

type recorded struct {
	event string
	data  any
}

// fakeSender records everything the engine fans out to one member.
type fakeSender struct {
	mu     sync.Mutex
	events []recorded
	kicked bool
}

func (f *fakeSender) Send(event string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recorded{event: event, data: data})
}

func (f *fakeSender) Kick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicked = true
}

func (f *fakeSender) byEvent(event string) []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recorded
	for _, r := range f.events {
		if r.event == event {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeSender) last(event string) (recorded, bool) {
	all := f.byEvent(event)
	if len(all) == 0 {
		return recorded{}, false
	}
	return all[len(all)-1], true
}

func (f *fakeSender) wasKicked() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.kicked
}

// entries returns the member's view of the log: history replay followed
// by the live receive_message stream.
func (f *fakeSender) entries() []entity.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Entry
	for _, r := range f.events {
		switch r.event {
		case EventChatHistory:
			out = append(out, r.data.([]entity.Entry)...)
		case EventReceiveMessage:
			out = append(out, r.data.(entity.Entry))
		}
	}
	return out
}

func join(t *testing.T, e *Engine, key, connID, name string) *fakeSender {
	t.Helper()
	s := &fakeSender{}
	require.NoError(t, e.Join(key, connID, name, s))
	return s
}

func TestCreateRoomAndExists(t *testing.T) {
	e := NewEngine()

	key := e.CreateRoom()
	assert.Len(t, key, 6)
	assert.True(t, e.RoomExists(key))
	assert.False(t, e.RoomExists("nope42"))
}

func TestJoinUnknownRoom(t *testing.T) {
	e := NewEngine()

	err := e.Join("ghosts", "conn-1", "Alice", &fakeSender{})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestFirstJoinerBecomesAdmin(t *testing.T) {
	e := NewEngine()
	key := e.CreateRoom()

	alice := join(t, e, key, "conn-a", "Alice")

	list, ok := alice.last(EventUserList)
	require.True(t, ok)
	payload := list.data.(UserListPayload)
	assert.Equal(t, "conn-a", payload.AdminID)
	require.Len(t, payload.Users, 1)
	assert.Equal(t, "Alice", payload.Users[0].Username)
	assert.Equal(t, "AL", payload.Users[0].Initials)
	assert.NotEmpty(t, payload.Users[0].AvatarColor)
}

func TestJoinBroadcastsToEveryone(t *testing.T) {
	e := NewEngine()
	key := e.CreateRoom()

	alice := join(t, e, key, "conn-a", "Alice")
	bob := join(t, e, key, "conn-b", "Bob")

	joined, ok := alice.last(EventUserJoined)
	require.True(t, ok)
	assert.Equal(t, PresencePayload{Username: "Bob", UserCount: 2}, joined.data)

	// The joiner sees the same membership change as everyone else.
	joined, ok = bob.last(EventUserJoined)
	require.True(t, ok)
	assert.Equal(t, 2, joined.data.(PresencePayload).UserCount)

	list, ok := bob.last(EventUserList)
	require.True(t, ok)
	assert.Equal(t, "conn-a", list.data.(UserListPayload).AdminID)
}

func TestAdminSuccessionFollowsJoinOrder(t *testing.T) {
	e := NewEngine()
	key := e.CreateRoom()

	join(t, e, key, "conn-a", "Alice")
	bob := join(t, e, key, "conn-b", "Bob")
	carol := join(t, e, key, "conn-c", "Carol")

	e.Leave(key, "conn-a")

	for _, s := range []*fakeSender{bob, carol} {
		list, ok := s.last(EventUserList)
		require.True(t, ok)
		assert.Equal(t, "conn-b", list.data.(UserListPayload).AdminID)
	}

	e.Disconnect("conn-b")
	list, ok := carol.last(EventUserList)
	require.True(t, ok)
	assert.Equal(t, "conn-c", list.data.(UserListPayload).AdminID)
}

func TestExactlyOnceCleanup(t *testing.T) {
	cases := []struct {
		name  string
		exits func(e *Engine, key string)
	}{
		{"leave then disconnect", func(e *Engine, key string) {
			e.Leave(key, "conn-b")
			e.Disconnect("conn-b")
		}},
		{"disconnect then leave", func(e *Engine, key string) {
			e.Disconnect("conn-b")
			e.Leave(key, "conn-b")
		}},
		{"double leave", func(e *Engine, key string) {
			e.Leave(key, "conn-b")
			e.Leave(key, "conn-b")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine()
			key := e.CreateRoom()
			alice := join(t, e, key, "conn-a", "Alice")
			join(t, e, key, "conn-b", "Bob")

			tc.exits(e, key)

			assert.Len(t, alice.byEvent(EventUserLeft), 1)
			exits := 0
			for _, entry := range alice.entries() {
				if strings.Contains(entry.Message, "exited the chat") {
					exits++
				}
			}
			assert.Equal(t, 1, exits)
		})
	}
}

func TestRoomEvictedWhenLastMemberGone(t *testing.T) {
	e := NewEngine()
	key := e.CreateRoom()

	join(t, e, key, "conn-a", "Alice")
	join(t, e, key, "conn-b", "Bob")

	e.Leave(key, "conn-a")
	assert.True(t, e.RoomExists(key))

	e.Disconnect("conn-b")
	assert.False(t, e.RoomExists(key))

	// Late events for the dead key are silently dropped.
	e.PostChat(key, "conn-a", "anyone there?")
	e.Leave(key, "conn-b")
	assert.ErrorIs(t, e.Join(key, "conn-c", "Carol", &fakeSender{}), ErrRoomNotFound)
}

func TestRemoveIsAdminOnly(t *testing.T) {
	e := NewEngine()
	key := e.CreateRoom()

	alice := join(t, e, key, "conn-a", "Alice")
	bob := join(t, e, key, "conn-b", "Bob")

	// Bob is not admin: nothing changes, nothing is broadcast.
	e.Remove(key, "conn-b", "conn-a")
	assert.Empty(t, alice.byEvent(EventUserLeft))
	assert.False(t, alice.wasKicked())

	e.Remove(key, "conn-a", "conn-b")
	removed, ok := bob.last(EventRemoved)
	require.True(t, ok)
	assert.Contains(t, removed.data.(RemovedPayload).Message, "removed from the chat")
	assert.True(t, bob.wasKicked())

	left, ok := alice.last(EventUserLeft)
	require.True(t, ok)
	assert.Equal(t, PresencePayload{Username: "Bob", UserCount: 1}, left.data)

	found := false
	for _, entry := range alice.entries() {
		if entry.Message == "Bob was removed by the admin" {
			found = true
		}
	}
	assert.True(t, found)

	// The removed member no longer receives room traffic.
	before := len(bob.byEvent(EventReceiveMessage))
	e.PostChat(key, "conn-a", "after removal")
	assert.Len(t, bob.byEvent(EventReceiveMessage), before)
}

func TestPostChatRequiresMembership(t *testing.T) {
	e := NewEngine()
	key := e.CreateRoom()

	alice := join(t, e, key, "conn-a", "Alice")

	e.PostChat(key, "conn-x", "hi")
	e.PostChat("nosuch", "conn-a", "hi")

	for _, entry := range alice.entries() {
		assert.NotEqual(t, entity.EntryUser, entry.Type)
	}

	e.PostChat(key, "conn-a", "hello")
	last, ok := alice.last(EventReceiveMessage)
	require.True(t, ok)
	chat := last.data.(entity.Entry)
	assert.Equal(t, entity.EntryUser, chat.Type)
	assert.Equal(t, "Alice", chat.Username)
	assert.Equal(t, "hello", chat.Message)
}

func TestAnnouncementDualEmitAndReplay(t *testing.T) {
	e := NewEngine()
	key := e.CreateRoom()

	alice := join(t, e, key, "conn-a", "Alice")
	bob := join(t, e, key, "conn-b", "Bob")

	// Non-admin request is silently refused.
	e.PostAnnouncement(key, "conn-b", "fake news")
	assert.Empty(t, alice.byEvent(EventAnnouncement))

	e.PostAnnouncement(key, "conn-a", "Welcome")

	ann, ok := bob.last(EventAnnouncement)
	require.True(t, ok)
	entry := ann.data.(entity.Entry)
	assert.Equal(t, entity.EntryAnnouncement, entry.Type)
	assert.Equal(t, "Admin", entry.Username)
	assert.Equal(t, "Welcome", entry.Message)

	// Folded into the ordinary stream exactly once.
	announced := 0
	for _, got := range bob.entries() {
		if got.Type == entity.EntryAnnouncement {
			announced++
		}
	}
	assert.Equal(t, 1, announced)

	// A late joiner sees the announcement through history replay.
	carol := join(t, e, key, "conn-c", "Carol")
	history := carol.byEvent(EventChatHistory)
	require.Len(t, history, 1)
	replayed := 0
	for _, got := range history[0].data.([]entity.Entry) {
		if got.Type == entity.EntryAnnouncement {
			replayed++
		}
	}
	assert.Equal(t, 1, replayed)
}

func TestHistoryReplayMatchesLiveStream(t *testing.T) {
	e := NewEngine()
	key := e.CreateRoom()

	alice := join(t, e, key, "conn-a", "Alice")
	e.PostChat(key, "conn-a", "first")
	e.PostChat(key, "conn-a", "second")

	bob := join(t, e, key, "conn-b", "Bob")
	e.PostChat(key, "conn-b", "third")
	e.PostAnnouncement(key, "conn-a", "notice")

	// Replay plus live stream reconstructs the same ordered log for
	// every member regardless of join time.
	assert.Equal(t, alice.entries(), bob.entries())
}

func TestTypingIsRelayedNotLogged(t *testing.T) {
	e := NewEngine()
	key := e.CreateRoom()

	alice := join(t, e, key, "conn-a", "Alice")
	bob := join(t, e, key, "conn-b", "Bob")

	e.SetTyping(key, "conn-a")
	e.ClearTyping(key, "conn-a")

	// Relayed to the others only.
	assert.Empty(t, alice.byEvent(EventUserTyping))
	typing, ok := bob.last(EventUserTyping)
	require.True(t, ok)
	assert.Equal(t, TypingPayload{Username: "Alice"}, typing.data)
	assert.Len(t, bob.byEvent(EventUserStopTyping), 1)

	// Never stored: a late joiner's replay has no trace of it.
	carol := join(t, e, key, "conn-c", "Carol")
	for _, entry := range carol.entries() {
		assert.NotContains(t, entry.Message, "typing")
	}

	// Non-members are ignored.
	e.SetTyping(key, "conn-x")
}

func TestBroadcastCountMatchesMembership(t *testing.T) {
	e := NewEngine()
	key := e.CreateRoom()

	senders := make([]*fakeSender, 0, 5)
	for i := 0; i < 5; i++ {
		senders = append(senders, join(t, e, key, fmt.Sprintf("conn-%d", i), fmt.Sprintf("User%d", i)))
	}
	for i := 4; i >= 0; i-- {
		e.Leave(key, fmt.Sprintf("conn-%d", i))
	}

	// Every broadcast user count equals the membership size at that
	// moment: 1..5 on the way up, 4..0 on the way down, each seen by
	// whoever was still present.
	for idx, s := range senders {
		var counts []int
		for _, r := range s.byEvent(EventUserJoined) {
			counts = append(counts, r.data.(PresencePayload).UserCount)
		}
		for _, r := range s.byEvent(EventUserLeft) {
			counts = append(counts, r.data.(PresencePayload).UserCount)
		}

		want := []int{}
		for up := idx + 1; up <= 5; up++ {
			want = append(want, up)
		}
		for down := 4; down >= idx+1; down-- {
			want = append(want, down)
		}
		assert.Equal(t, want, counts, "member %d", idx)
	}

	assert.False(t, e.RoomExists(key))
}

func TestConcurrentRoomsAreIndependent(t *testing.T) {
	e := NewEngine()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := e.CreateRoom()
			connID := fmt.Sprintf("conn-%d", n)
			s := &fakeSender{}
			if err := e.Join(key, connID, fmt.Sprintf("User%d", n), s); err != nil {
				t.Error(err)
				return
			}
			e.PostChat(key, connID, "hello")
			e.Leave(key, connID)
			if e.RoomExists(key) {
				t.Errorf("room %s should be gone", key)
			}
		}(i)
	}
	wg.Wait()

	stats := e.Stats()
	assert.Equal(t, 0, stats.TotalRooms)
	assert.Equal(t, 0, stats.TotalMembers)
	assert.Equal(t, int64(8), stats.RoomsCreated)
}

func TestEndToEndSession(t *testing.T) {
	e := NewEngine()
	key := e.CreateRoom()

	alice := join(t, e, key, "conn-a", "Alice")
	bob := join(t, e, key, "conn-b", "Bob")

	e.PostAnnouncement(key, "conn-a", "Welcome")
	e.CreatePoll(key, "conn-a", "Best letter?", []string{"A", "B"})
	e.Vote(key, "conn-b", 0)

	updated, ok := bob.last(EventPollUpdated)
	require.True(t, ok)
	poll := updated.data.(*entity.Poll)
	assert.Equal(t, 1, poll.Options[0].Votes)
	assert.Equal(t, 0, poll.Options[1].Votes)

	e.Disconnect("conn-a")
	list, ok := bob.last(EventUserList)
	require.True(t, ok)
	assert.Equal(t, "conn-b", list.data.(UserListPayload).AdminID)

	e.Leave(key, "conn-b")
	assert.False(t, e.RoomExists(key))

	// Bob's reconstructed log has exactly one welcome announcement and
	// every membership change.
	var messages []string
	for _, entry := range bob.entries() {
		messages = append(messages, entry.Message)
	}
	assert.Equal(t, alice.byEvent(EventChatHistory)[0].data, []entity.Entry{})
	assert.Contains(t, messages, "Welcome")
	assert.Contains(t, messages, "Alice exited the chat")
}
