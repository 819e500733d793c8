package chat

import "time"

// Role identifies who authored a message in the conversation log.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Label returns the prefix used when the message is rendered into the
// prediction context. Unknown roles have no label.
func (r Role) Label() (string, bool) {
	switch r {
	case RoleUser:
		return "User", true
	case RoleAssistant:
		return "Assistant", true
	case RoleSystem:
		return "System", true
	default:
		return "", false
	}
}

// Message is one immutable entry of a session log.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
