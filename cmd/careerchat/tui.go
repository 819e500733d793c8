package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Reese0301/careerinfinance/internal/model/chat"
	"github.com/Reese0301/careerinfinance/internal/service/advisor"
	"github.com/Reese0301/careerinfinance/internal/session"
)

var (
	userStyle      = lipgloss.NewStyle().Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	systemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	faintStyle     = lipgloss.NewStyle().Faint(true)
)

type turnMsg struct {
	result *advisor.TurnResult
	err    error
}

type chatModel struct {
	ctx        context.Context
	advisorSvc *advisor.Service
	state      *session.State
	input      textinput.Model
	spin       spinner.Model
	transcript []string
	thinking   bool
	status     string
	width      int
}

func newChatModel(ctx context.Context, advisorSvc *advisor.Service, state *session.State) chatModel {
	in := textinput.New()
	in.Placeholder = "Ask about careers in finance"
	in.Prompt = "You> "
	in.Focus()
	in.CharLimit = 0
	in.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = assistantStyle

	m := chatModel{
		ctx:        ctx,
		advisorSvc: advisorSvc,
		state:      state,
		input:      in,
		spin:       s,
	}
	for _, msg := range state.Messages() {
		m.transcript = append(m.transcript, renderMessage(msg))
	}
	return m
}

func renderMessage(msg chat.Message) string {
	label, ok := msg.Role.Label()
	if !ok {
		return msg.Content
	}
	switch msg.Role {
	case chat.RoleUser:
		return userStyle.Render(label+":") + " " + msg.Content
	case chat.RoleAssistant:
		return assistantStyle.Render(label+":") + " " + msg.Content
	default:
		return systemStyle.Render(label+":") + " " + msg.Content
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-2, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.thinking {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.SetValue("")
			if cmd, ok := parseSlashCommand(line); ok {
				return m.runCommand(cmd)
			}
			m.transcript = append(m.transcript, userStyle.Render("User:")+" "+line)
			m.thinking = true
			m.status = ""
			return m, tea.Batch(m.submit(line), m.spin.Tick)
		}

	case turnMsg:
		m.thinking = false
		if msg.err != nil {
			m.transcript = append(m.transcript, errorStyle.Render("Error: "+msg.err.Error()))
			return m, nil
		}
		m.transcript = append(m.transcript, renderMessage(msg.result.Reply))
		m.status = fmt.Sprintf("%s answered in %.1fs", msg.result.Model, msg.result.Elapsed().Seconds())
		return m, nil

	case spinner.TickMsg:
		if !m.thinking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit(text string) tea.Cmd {
	ctx, svc, state := m.ctx, m.advisorSvc, m.state
	return func() tea.Msg {
		result, err := svc.SubmitTurn(ctx, state, text)
		return turnMsg{result: result, err: err}
	}
}

func (m chatModel) runCommand(cmd slashCommand) (tea.Model, tea.Cmd) {
	switch cmd.Name {
	case "quit", "exit":
		return m, tea.Quit
	case "help":
		m.transcript = append(m.transcript, faintStyle.Render(helpText))
	case "clear":
		m.transcript = nil
	case "mode", "model", "outlook", "style":
		sel, err := applySelection(m.state, cmd.Name, cmd.Arg)
		if err != nil {
			m.status = errorStyle.Render(err.Error())
			break
		}
		m.status = "mode: " + describeSelection(sel)
	case "resume":
		if err := uploadResumeFile(m.state, cmd.Arg); err != nil {
			m.status = errorStyle.Render(err.Error())
			break
		}
		msgs := m.state.Tail(1)
		if len(msgs) == 1 {
			m.transcript = append(m.transcript, renderMessage(msgs[0]))
		}
		m.status = "resume attached"
	case "preview":
		question, err := m.advisorSvc.Preview(m.ctx, m.state, cmd.Arg)
		if err != nil {
			m.status = errorStyle.Render(err.Error())
			break
		}
		m.transcript = append(m.transcript, faintStyle.Render(question))
	default:
		m.status = errorStyle.Render(fmt.Sprintf("%v: /%s", errUnknownCommand, cmd.Name))
	}
	return m, nil
}

func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString(systemStyle.Render("Mode:") + " " + describeSelection(m.state.Selection()))
	if m.state.Resume() != "" {
		b.WriteString(faintStyle.Render("  (resume attached)"))
	}
	b.WriteString("\n\n")

	for _, line := range m.transcript {
		b.WriteString(line + "\n\n")
	}

	if m.thinking {
		b.WriteString(assistantStyle.Render("Assistant:") + " " + m.spin.View() + "Thinking...\n\n")
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(faintStyle.Render("Type /help for commands, /quit to leave."))
	return b.String()
}
