package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Reese0301/careerinfinance/internal/model/chat"
)

// ErrEmptyRole is returned when a message is appended without a role.
var ErrEmptyRole = errors.New("message role is required")

// DefaultWelcome greets the user before the first turn.
const DefaultWelcome = "Hello! I'm here to assist you with any finance recruiting questions you may have. How can I help you today?"

// Log is the ordered, append-only message history of one session.
// Log is not safe for concurrent use; State guards it.
type Log struct {
	sessionID string
	messages  []chat.Message
	seeded    int
	now       func() time.Time
}

// NewLog returns a log seeded with a single assistant welcome message.
// An empty welcome leaves the log unseeded.
func NewLog(sessionID, welcome string) *Log {
	l := &Log{
		sessionID: sessionID,
		messages:  make([]chat.Message, 0, 16),
		now:       time.Now,
	}
	if welcome != "" {
		l.messages = append(l.messages, l.newMessage(chat.RoleAssistant, welcome))
		l.seeded = 1
	}
	return l
}

// Append adds a message at the end of the log.
func (l *Log) Append(role chat.Role, content string) (chat.Message, error) {
	if role == "" {
		return chat.Message{}, ErrEmptyRole
	}
	msg := l.newMessage(role, content)
	l.messages = append(l.messages, msg)
	return msg, nil
}

// Tail returns the last n messages in insertion order.
func (l *Log) Tail(n int) []chat.Message {
	return tail(l.messages, n)
}

// Conversation returns the last n messages excluding the seeded welcome.
func (l *Log) Conversation(n int) []chat.Message {
	return tail(l.messages[l.seeded:], n)
}

// Messages returns a copy of the full log.
func (l *Log) Messages() []chat.Message {
	return tail(l.messages, len(l.messages))
}

// Len reports the number of messages, including the welcome.
func (l *Log) Len() int { return len(l.messages) }

// Seeded reports how many leading messages were synthesized at creation.
func (l *Log) Seeded() int { return l.seeded }

func (l *Log) newMessage(role chat.Role, content string) chat.Message {
	return chat.Message{
		ID:        uuid.NewString(),
		SessionID: l.sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: l.now().UTC(),
	}
}

func tail(messages []chat.Message, n int) []chat.Message {
	if n <= 0 || len(messages) == 0 {
		return []chat.Message{}
	}
	start := 0
	if len(messages) > n {
		start = len(messages) - n
	}
	copied := make([]chat.Message, len(messages)-start)
	copy(copied, messages[start:])
	return copied
}
