package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Reese0301/careerinfinance/internal/config"
	"github.com/Reese0301/careerinfinance/internal/model/mode"
	"github.com/Reese0301/careerinfinance/internal/service/advisor"
	"github.com/Reese0301/careerinfinance/internal/service/prediction"
	"github.com/Reese0301/careerinfinance/internal/session"
)

func newTestModel(t *testing.T) chatModel {
	t.Helper()
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"Learn the three statements."}`))
	}))
	t.Cleanup(endpoint.Close)

	cfg := config.AdvisorConfig{
		Endpoints:    map[mode.Model]config.Endpoint{mode.Mentor: {URL: endpoint.URL}, mode.Expert: {URL: endpoint.URL}},
		ContextLimit: 5,
	}
	svc, err := advisor.NewService(context.Background(), prediction.NewClient(nil), cfg)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	return newChatModel(context.Background(), svc, session.NewState("s1", session.DefaultWelcome))
}

func enter(t *testing.T, m chatModel, line string) (chatModel, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(chatModel), cmd
}

func TestChatModelShowsWelcome(t *testing.T) {
	m := newTestModel(t)
	if len(m.transcript) != 1 || !strings.Contains(m.transcript[0], session.DefaultWelcome) {
		t.Fatalf("expected welcome in transcript, got %v", m.transcript)
	}
}

func TestChatModelTurn(t *testing.T) {
	m := newTestModel(t)

	m, cmd := enter(t, m, "How should I prep for interviews?")
	if !m.thinking || cmd == nil {
		t.Fatalf("expected a pending turn")
	}

	msg := m.submit("How should I prep for interviews?")()
	next, _ := m.Update(msg)
	m = next.(chatModel)

	if m.thinking {
		t.Fatalf("turn should be finished")
	}
	last := m.transcript[len(m.transcript)-1]
	if !strings.Contains(last, "Learn the three statements.") {
		t.Fatalf("reply missing from transcript: %q", last)
	}
	if !strings.Contains(m.status, "Mentor answered") {
		t.Fatalf("expected elapsed status, got %q", m.status)
	}
}

func TestChatModelIgnoresEnterWhileThinking(t *testing.T) {
	m := newTestModel(t)
	m.thinking = true

	m, cmd := enter(t, m, "another question")
	if cmd != nil {
		t.Fatalf("enter should be ignored while a turn is pending")
	}
	if m.input.Value() != "another question" {
		t.Fatalf("input should be kept, got %q", m.input.Value())
	}
}

func TestChatModelSlashCommands(t *testing.T) {
	m := newTestModel(t)

	m, _ = enter(t, m, "/outlook pessimistic")
	if m.state.Selection().Outlook != mode.Pessimistic {
		t.Fatalf("outlook not applied: %+v", m.state.Selection())
	}

	m, _ = enter(t, m, "/preview What is carry?")
	last := m.transcript[len(m.transcript)-1]
	if !strings.Contains(last, "User Question: What is carry?") {
		t.Fatalf("preview missing question: %q", last)
	}
	if m.state.Len() != 1 {
		t.Fatalf("preview should not touch the log, got %d messages", m.state.Len())
	}

	m, _ = enter(t, m, "/model oracle")
	if !strings.Contains(m.status, "invalid mode") {
		t.Fatalf("expected invalid mode status, got %q", m.status)
	}

	m, _ = enter(t, m, "/clear")
	if len(m.transcript) != 0 {
		t.Fatalf("expected empty transcript after /clear")
	}

	_, cmd := enter(t, m, "/quit")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
