package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Reese0301/careerinfinance/internal/model/mode"
	"github.com/Reese0301/careerinfinance/internal/session"
)

var errUnknownCommand = errors.New("unknown command")

const helpText = `/mode mentor|expert      switch model (alias /model)
/outlook <outlook>       pessimistic, practical or optimistic
/style <style>           instructive, default or socratic
/resume <file>           upload a resume from a text file
/preview <question>      show the question that would be sent
/clear                   clear the screen
/quit                    leave`

// slashCommand is one parsed "/name arg" line.
type slashCommand struct {
	Name string
	Arg  string
}

func parseSlashCommand(line string) (slashCommand, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return slashCommand{}, false
	}
	name, arg, _ := strings.Cut(line[1:], " ")
	return slashCommand{
		Name: strings.ToLower(name),
		Arg:  strings.TrimSpace(arg),
	}, true
}

// applySelection changes one field of the session's mode selection.
func applySelection(state *session.State, field, value string) (mode.Selection, error) {
	sel := state.Selection()
	switch field {
	case "model", "mode":
		m, err := mode.ParseModel(value)
		if err != nil {
			return sel, err
		}
		sel.Model = m
	case "outlook":
		o, err := mode.ParseOutlook(value)
		if err != nil {
			return sel, err
		}
		sel.Outlook = o
	case "style":
		s, err := mode.ParseCoachingStyle(value)
		if err != nil {
			return sel, err
		}
		sel.CoachingStyle = s
	default:
		return sel, fmt.Errorf("%w: %s", errUnknownCommand, field)
	}
	if err := state.SelectMode(sel); err != nil {
		return state.Selection(), err
	}
	return state.Selection(), nil
}

func uploadResumeFile(state *session.State, path string) error {
	if path == "" {
		return errors.New("usage: /resume <file>")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	_, err = state.UploadResume(string(data))
	return err
}

func describeSelection(sel mode.Selection) string {
	if sel.Model == mode.Expert {
		return string(sel.Model)
	}
	return fmt.Sprintf("%s · %s · %s", sel.Model, sel.Outlook, sel.CoachingStyle)
}
