package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Narvasiddhartha/AnonChat/internal/entity"
)

// ErrRoomNotFound is surfaced to user-initiated operations that target a
// room key with no live room behind it.
var ErrRoomNotFound = errors.New("room does not exist")

const roomKeyLength = 6

// Engine is the single coordinating authority for every live room in the
// process. It owns room existence, membership, admin role, message
// ordering and poll tallying; nothing it holds survives process restart.
type Engine struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	conns map[string]string // connection id -> key of the room it joined

	stats   Stats
	statsMu sync.RWMutex
}

type Stats struct {
	TotalRooms   int       `json:"total_rooms"`
	TotalMembers int       `json:"total_members"`
	RoomsCreated int64     `json:"rooms_created"`
	EventsSent   int64     `json:"events_sent"`
	StartedAt    time.Time `json:"started_at"`
}

func NewEngine() *Engine {
	return &Engine{
		rooms: make(map[string]*Room),
		conns: make(map[string]string),
		stats: Stats{StartedAt: time.Now()},
	}
}

// CreateRoom registers an empty room under a fresh short key and returns
// the key. uuid v4 draws from crypto/rand, so a truncated prefix keeps
// collisions negligible at expected room counts; on the off chance of a
// clash we just draw again.
func (e *Engine) CreateRoom() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var key string
	for {
		key = uuid.NewString()[:roomKeyLength]
		if _, taken := e.rooms[key]; !taken {
			break
		}
	}
	e.rooms[key] = newRoom(key, e)

	e.updateStats(func(s *Stats) { s.RoomsCreated++ })
	log.Info().Str("roomKey", key).Msg("engine: room created")
	return key
}

// RoomExists is a side-effect free lookup, safe to call before joining.
func (e *Engine) RoomExists(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.rooms[key]
	return ok
}

func (e *Engine) getRoom(key string) (*Room, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.rooms[key]
	return r, ok
}

// Join adds a connection to a room. The first member of a room becomes
// admin. The joiner receives the full history replay and the room
// metadata before any live event, then the whole room (joiner included)
// gets the member list, the join notice and the join system entry.
func (e *Engine) Join(key, connID, username string, s Sender) error {
	r, ok := e.getRoom(key)
	if !ok {
		return ErrRoomNotFound
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRoomNotFound
	}

	p := entity.NewParticipant(connID, username)
	r.members = append(r.members, &member{participant: p, sender: s})
	if r.adminID == "" {
		r.adminID = connID
	}

	// History is replayed before the join entry is appended, the joiner
	// sees its own arrival only through the live stream.
	s.Send(EventChatHistory, r.historySnapshot())
	s.Send(EventRoomInfo, RoomInfoPayload{
		CreatedAt: r.createdAt.UnixMilli(),
		Poll:      r.poll.Clone(),
	})

	entry := r.appendEntry(entity.NewSystemEntry(
		fmt.Sprintf("%s joined the chat", username), len(r.members)))

	r.broadcast(EventUserList, r.userList())
	r.broadcast(EventUserJoined, PresencePayload{Username: username, UserCount: len(r.members)})
	r.broadcast(EventReceiveMessage, entry)
	count := len(r.members)
	r.mu.Unlock()

	e.mu.Lock()
	e.conns[connID] = key
	e.mu.Unlock()

	log.Info().Str("roomKey", key).Str("connID", connID).Int("members", count).Msg("engine: member joined")
	return nil
}

// Leave removes a connection from a room. A connection that is not a
// member (already cleaned up via the other exit path) is a no-op.
func (e *Engine) Leave(key, connID string) {
	e.removeMember(key, connID, "")
}

// Disconnect is the transport-detected exit path. It resolves the one
// room currently holding the connection and behaves like Leave; if the
// explicit leave already ran, the index entry is gone and nothing happens.
func (e *Engine) Disconnect(connID string) {
	e.mu.RLock()
	key, ok := e.conns[connID]
	e.mu.RUnlock()
	if !ok {
		return
	}
	e.removeMember(key, connID, "")
}

// Remove is the admin kicking targetID out of the room. A requester that
// is not the current admin changes nothing and nothing is broadcast.
func (e *Engine) Remove(key, requesterID, targetID string) {
	if requesterID == "" {
		return
	}
	e.removeMember(key, targetID, requesterID)
}

// removeMember performs the single cleanup for every exit path. The
// member-list lookup under the room lock is the exactly-once guard:
// whichever of {leave, disconnect, removal} runs second finds the
// connection already absent and backs out.
//
// requesterID is empty for voluntary exits; when set, it marks an admin
// removal and is checked against the room's admin before anything mutates.
func (e *Engine) removeMember(key, connID, requesterID string) {
	r, ok := e.getRoom(key)
	if !ok {
		e.dropConnIndex(connID, key)
		return
	}

	r.mu.Lock()
	if requesterID != "" && requesterID != r.adminID {
		r.mu.Unlock()
		return
	}

	m, idx := r.memberByID(connID)
	if m == nil {
		r.mu.Unlock()
		return
	}
	r.members = append(r.members[:idx], r.members[idx+1:]...)

	// Admin succession: earliest-joined remaining member, or nobody.
	if r.adminID == connID {
		if len(r.members) > 0 {
			r.adminID = r.members[0].participant.ID
		} else {
			r.adminID = ""
		}
	}

	username := m.participant.Username
	text := fmt.Sprintf("%s exited the chat", username)
	if requesterID != "" {
		text = fmt.Sprintf("%s was removed by the admin", username)
		m.sender.Send(EventRemoved, RemovedPayload{
			Message: "You have been removed from the chat by the admin.",
		})
	}

	entry := r.appendEntry(entity.NewSystemEntry(text, len(r.members)))
	r.broadcast(EventUserLeft, PresencePayload{Username: username, UserCount: len(r.members)})
	r.broadcast(EventReceiveMessage, entry)
	r.broadcast(EventUserList, r.userList())

	empty := len(r.members) == 0
	if empty {
		r.closed = true
	}
	r.mu.Unlock()

	e.mu.Lock()
	if e.conns[connID] == key {
		delete(e.conns, connID)
	}
	if empty {
		delete(e.rooms, key)
	}
	e.mu.Unlock()

	if requesterID != "" {
		m.sender.Kick()
	}
	if empty {
		log.Info().Str("roomKey", key).Msg("engine: room evicted, last member gone")
	}
}

// PostChat appends a chat entry and fans it out. Events for rooms already
// gone, or from connections that are not members, are dropped.
func (e *Engine) PostChat(key, authorID, text string) {
	r, ok := e.getRoom(key)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	m, _ := r.memberByID(authorID)
	if m == nil {
		return
	}
	entry := r.appendEntry(entity.NewChatEntry(m.participant.Username, text))
	r.broadcast(EventReceiveMessage, entry)
}

// PostAnnouncement is admin-only. The entry lands in the log once but is
// emitted twice: as the distinct announcement signal and as an ordinary
// chat message, so history replay keeps it for late joiners.
func (e *Engine) PostAnnouncement(key, requesterID, text string) {
	r, ok := e.getRoom(key)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if requesterID != r.adminID {
		return
	}
	entry := r.appendEntry(entity.NewAnnouncementEntry(text))
	r.broadcast(EventAnnouncement, entry)
	r.broadcast(EventReceiveMessage, entry)
}

// SetTyping relays a typing indicator to everyone else in the room. Pure
// relay: nothing is stored, nothing reaches the message log.
func (e *Engine) SetTyping(key, connID string) {
	e.relayTyping(key, connID, EventUserTyping)
}

func (e *Engine) ClearTyping(key, connID string) {
	e.relayTyping(key, connID, EventUserStopTyping)
}

func (e *Engine) relayTyping(key, connID, event string) {
	r, ok := e.getRoom(key)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	m, _ := r.memberByID(connID)
	if m == nil {
		return
	}
	r.broadcastExcept(event, TypingPayload{Username: m.participant.Username}, connID)
}

// Stats reports engine-wide counters for the ops surface.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	rooms := len(e.rooms)
	members := len(e.conns)
	e.mu.RUnlock()

	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	s := e.stats
	s.TotalRooms = rooms
	s.TotalMembers = members
	return s
}

// dropConnIndex clears a connection's room index entry, but only if it
// still points at the expected room; a connection may have moved on.
func (e *Engine) dropConnIndex(connID, key string) {
	e.mu.Lock()
	if e.conns[connID] == key {
		delete(e.conns, connID)
	}
	e.mu.Unlock()
}

func (e *Engine) updateStats(fn func(*Stats)) {
	e.statsMu.Lock()
	fn(&e.stats)
	e.statsMu.Unlock()
}
