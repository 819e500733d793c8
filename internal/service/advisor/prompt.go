package advisor

import (
	"strings"

	"github.com/Reese0301/careerinfinance/internal/model/chat"
	"github.com/Reese0301/careerinfinance/internal/model/mode"
)

// Instruction clauses prepended to Mentor questions.
const (
	PessimisticClause = "Adopt a pessimistic outlook: be candid about how competitive finance recruiting is, point out the weak spots in the user's plan and do not sugarcoat their odds.\n"
	OptimisticClause  = "Adopt an optimistic outlook: emphasise the opportunities open to the user and the realistic paths to an offer while staying truthful.\n"
	InstructiveClause = "Coach instructively: give direct, step-by-step guidance and finish with concrete action items.\n"
	SocraticClause    = "Coach in a Socratic style: guide the user with probing questions so they reason their way to the answer instead of being handed it.\n"
)

// questionSeparator joins the context and the new user input.
const questionSeparator = "\n\nUser Question: "

// InstructionPrefix returns the outlook clause followed by the coaching clause
// for Mentor selections. Expert always gets an empty prefix.
func InstructionPrefix(sel mode.Selection) string {
	if sel.Model != mode.Mentor {
		return ""
	}
	return outlookClause(sel.Outlook) + coachingClause(sel.CoachingStyle)
}

func outlookClause(o mode.Outlook) string {
	switch o {
	case mode.Pessimistic:
		return PessimisticClause
	case mode.Optimistic:
		return OptimisticClause
	case mode.Practical:
		return ""
	default:
		return ""
	}
}

func coachingClause(s mode.CoachingStyle) string {
	switch s {
	case mode.Instructive:
		return InstructiveClause
	case mode.Socratic:
		return SocraticClause
	case mode.DefaultStyle:
		return ""
	default:
		return ""
	}
}

// RenderContext renders history as "<Label>: <content>\n" lines, skipping
// messages whose role has no label.
func RenderContext(history []chat.Message) string {
	var builder strings.Builder
	for _, msg := range history {
		label, ok := msg.Role.Label()
		if !ok {
			continue
		}
		builder.WriteString(label)
		builder.WriteString(": ")
		builder.WriteString(msg.Content)
		builder.WriteString("\n")
	}
	return builder.String()
}

// ComposeQuestion builds the single question string sent to the endpoint:
// prefix, optional resume, rendered history, then the user input.
func ComposeQuestion(prefix, resume string, history []chat.Message, userInput string) string {
	var builder strings.Builder
	builder.WriteString(prefix)
	if resume != "" {
		builder.WriteString(resume)
		builder.WriteString("\n\n")
	}
	builder.WriteString(RenderContext(history))
	builder.WriteString(questionSeparator)
	builder.WriteString(userInput)
	return builder.String()
}
