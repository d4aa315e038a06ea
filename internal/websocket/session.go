package websocket

import (
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/Narvasiddhartha/AnonChat/internal/engine"
)

var validate = validator.New()

// dispatch routes one inbound frame to the engine. Malformed frames are
// dropped with a log line; a bad event for one room must never take the
// process or any other room down.
func (c *Client) dispatch(raw []byte) {
	var frame IncomingFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		log.Warn().Err(err).Str("connID", c.ID).Msg("ws: dropping malformed frame")
		return
	}

	switch frame.Event {
	case evJoin:
		var p JoinPayload
		if !decode(frame.Data, &p, c.ID, frame.Event) {
			return
		}
		if err := c.eng.Join(p.RoomKey, c.ID, p.Username, c); err != nil {
			c.Send(engine.EventJoinError, map[string]string{"message": "Room does not exist."})
		}

	case evSendMessage:
		var p ChatPayload
		if !decode(frame.Data, &p, c.ID, frame.Event) {
			return
		}
		c.eng.PostChat(p.RoomKey, c.ID, p.Message)

	case evSendAnnouncement:
		var p ChatPayload
		if !decode(frame.Data, &p, c.ID, frame.Event) {
			return
		}
		c.eng.PostAnnouncement(p.RoomKey, c.ID, p.Message)

	case evTyping:
		var p RoomKeyPayload
		if !decode(frame.Data, &p, c.ID, frame.Event) {
			return
		}
		c.eng.SetTyping(p.RoomKey, c.ID)

	case evStopTyping:
		var p RoomKeyPayload
		if !decode(frame.Data, &p, c.ID, frame.Event) {
			return
		}
		c.eng.ClearTyping(p.RoomKey, c.ID)

	case evCreatePoll:
		var p CreatePollPayload
		if !decode(frame.Data, &p, c.ID, frame.Event) {
			return
		}
		c.eng.CreatePoll(p.RoomKey, c.ID, p.Question, p.Options)

	case evVotePoll:
		var p VotePayload
		if !decode(frame.Data, &p, c.ID, frame.Event) {
			return
		}
		c.eng.Vote(p.RoomKey, c.ID, p.OptionIdx)

	case evClosePoll:
		var p RoomKeyPayload
		if !decode(frame.Data, &p, c.ID, frame.Event) {
			return
		}
		c.eng.ClosePoll(p.RoomKey, c.ID)

	case evLeaveRoom:
		var p RoomKeyPayload
		if !decode(frame.Data, &p, c.ID, frame.Event) {
			return
		}
		c.eng.Leave(p.RoomKey, c.ID)

	case evRemoveUser:
		var p RemoveUserPayload
		if !decode(frame.Data, &p, c.ID, frame.Event) {
			return
		}
		c.eng.Remove(p.RoomKey, c.ID, p.TargetID)

	default:
		log.Debug().Str("connID", c.ID).Str("event", frame.Event).Msg("ws: unknown event")
	}
}

func decode(data []byte, dst any, connID, event string) bool {
	if err := json.Unmarshal(data, dst); err != nil {
		log.Warn().Err(err).Str("connID", connID).Str("event", event).Msg("ws: dropping invalid payload")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		log.Warn().Err(err).Str("connID", connID).Str("event", event).Msg("ws: dropping payload failing validation")
		return false
	}
	return true
}
