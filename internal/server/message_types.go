package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypePick  MessageType = "pick"
	MessageTypeReset MessageType = "reset"

	// Server to client messages
	MessageTypeWelcome MessageType = "welcome"
	MessageTypeState   MessageType = "state"
	MessageTypeError   MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes sent in ErrorData.Code
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeInvalidChoice   = "invalid_choice"
	ErrorCodeRoundInProgress = "round_in_progress"
	ErrorCodeSessionClosed   = "session_closed"
	ErrorCodeUnknownType     = "unknown_message_type"
)
