package model

const (
	MSG_JOIN_QUEUE      = "joinQueue"
	MSG_CANCEL_QUEUE    = "cancelQueue"
	MSG_PADDLE          = "paddle"
	MSG_REMATCH_REQUEST = "rematchRequest"
	MSG_LEAVE_ROOM      = "leaveRoom"
)

// ClientMessage is the single inbound frame shape. Which payload field
// matters depends on Type; unknown extra fields are ignored.
type ClientMessage struct {
	Type string  `json:"type"`
	Name string  `json:"name"`
	X    float64 `json:"x"`
}
