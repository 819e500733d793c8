package chat

import (
	"time"

	"github.com/Reese0301/careerinfinance/internal/model/mode"
)

// Session is the public view of one advisor conversation.
type Session struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	Selection mode.Selection `json:"selection"`
	HasResume bool           `json:"hasResume"`
}
