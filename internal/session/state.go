package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Reese0301/careerinfinance/internal/model/chat"
	"github.com/Reese0301/careerinfinance/internal/model/mode"
)

// ErrEmptyResume is returned when an uploaded resume has no visible text.
var ErrEmptyResume = errors.New("resume is empty")

// ResumeUploadedNote is the system message recorded after a resume upload.
const ResumeUploadedNote = "Resume uploaded."

// State owns everything one session knows: the log, the resume and the
// current mode selection. Turns are serialized with BeginTurn.
type State struct {
	id        string
	createdAt time.Time

	turnMu sync.Mutex

	mu        sync.RWMutex
	log       *Log
	resume    string
	selection mode.Selection
}

// NewState creates the state for a new session.
func NewState(id, welcome string) *State {
	return &State{
		id:        id,
		createdAt: time.Now().UTC(),
		log:       NewLog(id, welcome),
		selection: mode.Default(),
	}
}

// ID returns the session identifier.
func (s *State) ID() string { return s.id }

// CreatedAt returns when the session started.
func (s *State) CreatedAt() time.Time { return s.createdAt }

// BeginTurn blocks until no other turn is running and returns the release func.
func (s *State) BeginTurn() (release func()) {
	s.turnMu.Lock()
	return s.turnMu.Unlock
}

// Append adds a message to the log.
func (s *State) Append(role chat.Role, content string) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Append(role, content)
}

// Tail returns the last n messages of the log.
func (s *State) Tail(n int) []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Tail(n)
}

// TurnView is what a turn reads from the session, taken in one consistent read.
type TurnView struct {
	Selection mode.Selection
	Resume    string
	History   []chat.Message
}

// TurnSnapshot reads the selection, resume and context window under a single
// lock so a concurrent SelectMode cannot split them.
func (s *State) TurnSnapshot(n int, includeWelcome bool) TurnView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view := TurnView{
		Selection: s.selection,
		Resume:    s.resume,
	}
	if includeWelcome {
		view.History = s.log.Tail(n)
	} else {
		view.History = s.log.Conversation(n)
	}
	return view
}

// Messages returns the whole log for rendering.
func (s *State) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Messages()
}

// Len reports the number of logged messages.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Len()
}

// Resume returns the uploaded resume text, if any.
func (s *State) Resume() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resume
}

// UploadResume sets or replaces the resume and records the upload in the log.
// Blank text is rejected without touching the state.
func (s *State) UploadResume(text string) (chat.Message, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, ErrEmptyResume
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resume = text
	return s.log.Append(chat.RoleSystem, ResumeUploadedNote)
}

// Selection returns the current mode selection.
func (s *State) Selection() mode.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// SelectMode replaces the mode selection. Switching to Expert drops the resume.
func (s *State) SelectMode(sel mode.Selection) error {
	sel = sel.Normalize()
	if err := sel.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = sel
	if sel.Model == mode.Expert {
		s.resume = ""
	}
	return nil
}

// Snapshot returns the public view of the session.
func (s *State) Snapshot() chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return chat.Session{
		ID:        s.id,
		CreatedAt: s.createdAt,
		Selection: s.selection,
		HasResume: s.resume != "",
	}
}
