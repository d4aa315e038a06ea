package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/Narvasiddhartha/AnonChat/internal/entity"
)

// CreatePoll starts a poll in the room, admin-only. Any previous poll is
// discarded outright, there is no archive. Options must be non-empty;
// duplicate texts stay independent options.
func (e *Engine) CreatePoll(key, requesterID, question string, options []string) {
	if len(options) == 0 {
		return
	}

	r, ok := e.getRoom(key)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if requesterID != r.adminID {
		return
	}

	r.poll = entity.NewPoll(question, options)
	r.broadcast(EventPollCreated, r.poll.Clone())
	log.Info().Str("roomKey", key).Int("options", len(options)).Msg("engine: poll created")
}

// Vote records or overwrites the voter's ballot and rebroadcasts the
// tallies. Votes with no live poll, a closed poll or an out-of-range
// index are dropped; stale clients are expected to race here.
func (e *Engine) Vote(key, voterID string, optionIndex int) {
	r, ok := e.getRoom(key)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.poll == nil || !r.poll.Active {
		return
	}
	if optionIndex < 0 || optionIndex >= len(r.poll.Options) {
		return
	}
	if m, _ := r.memberByID(voterID); m == nil {
		return
	}

	r.poll.Ballots[voterID] = optionIndex
	r.poll.Recount()
	r.broadcast(EventPollUpdated, r.poll.Clone())
}

// ClosePoll ends the poll for good, admin-only. The final tallies go out
// once more; later votes are no-ops.
func (e *Engine) ClosePoll(key, requesterID string) {
	r, ok := e.getRoom(key)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.poll == nil || requesterID != r.adminID {
		return
	}

	r.poll.Active = false
	r.broadcast(EventPollUpdated, r.poll.Clone())
	log.Info().Str("roomKey", key).Msg("engine: poll closed")
}
