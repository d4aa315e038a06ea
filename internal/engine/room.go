package engine

import (
	"sync"
	"time"

	"github.com/Narvasiddhartha/AnonChat/internal/entity"
)

// Sender is the engine's outbound port to one member's transport session.
// Send must not block and must not retain data after returning (encode
// synchronously); a session whose transport already failed simply drops
// the event. Kick terminates the session, used after an admin removal.
type Sender interface {
	Send(event string, data any)
	Kick()
}

type member struct {
	participant entity.Participant
	sender      Sender
}

// Room holds all state of one live room. Every mutate-then-broadcast
// sequence runs under mu, so no client can observe a half-applied change;
// rooms never share locks, cross-room traffic proceeds in parallel.
type Room struct {
	mu sync.Mutex

	key       string
	createdAt time.Time
	members   []*member // insertion order = join order = admin succession order
	adminID   string
	entries   []entity.Entry
	poll      *entity.Poll

	// closed flips when the last member leaves; a late event that still
	// holds a pointer to the room must observe it as gone.
	closed bool

	eng *Engine
}

func newRoom(key string, eng *Engine) *Room {
	return &Room{
		key:       key,
		createdAt: time.Now(),
		eng:       eng,
	}
}

func (r *Room) memberByID(connID string) (*member, int) {
	for i, m := range r.members {
		if m.participant.ID == connID {
			return m, i
		}
	}
	return nil, -1
}

func (r *Room) userList() UserListPayload {
	users := make([]entity.Participant, len(r.members))
	for i, m := range r.members {
		users[i] = m.participant
	}
	return UserListPayload{Users: users, AdminID: r.adminID}
}

func (r *Room) appendEntry(e entity.Entry) entity.Entry {
	r.entries = append(r.entries, e)
	return e
}

func (r *Room) historySnapshot() []entity.Entry {
	history := make([]entity.Entry, len(r.entries))
	copy(history, r.entries)
	return history
}

// broadcast fans an event to every current member. Delivery is
// best-effort per member: a dead or slow session drops the event without
// affecting the rest. Callers hold r.mu.
func (r *Room) broadcast(event string, data any) {
	for _, m := range r.members {
		m.sender.Send(event, data)
	}
	r.eng.updateStats(func(s *Stats) {
		s.EventsSent += int64(len(r.members))
	})
}

// broadcastExcept relays to every member but one, used for typing
// indicators which the sender already shows locally.
func (r *Room) broadcastExcept(event string, data any, exceptID string) {
	n := 0
	for _, m := range r.members {
		if m.participant.ID == exceptID {
			continue
		}
		m.sender.Send(event, data)
		n++
	}
	r.eng.updateStats(func(s *Stats) {
		s.EventsSent += int64(n)
	})
}
