package realtime

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	EventJoinTicketRoom  = "joinTicketRoom"
	EventLeaveTicketRoom = "leaveTicketRoom"
	EventNewMessage      = "newMessage"
	EventJoined          = "joined"
	EventLeft            = "left"
	EventError           = "error"
)

// Event is the envelope for everything pushed to a client.
type Event struct {
	Event    string `json:"event"`
	TicketID int64  `json:"ticketId,omitempty"`
	Data     any    `json:"data,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// inbound is a client command, e.g. {"event":"joinTicketRoom","ticketId":"42"}.
type inbound struct {
	Event    string    `json:"event"`
	TicketID ticketRef `json:"ticketId"`
}

// ticketRef accepts the ticket id as a JSON string or number.
type ticketRef int64

func (t *ticketRef) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*t = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return err
	}
	*t = ticketRef(id)
	return nil
}
