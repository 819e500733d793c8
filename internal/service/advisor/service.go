package advisor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/Reese0301/careerinfinance/internal/config"
	"github.com/Reese0301/careerinfinance/internal/model/chat"
	"github.com/Reese0301/careerinfinance/internal/model/mode"
	"github.com/Reese0301/careerinfinance/internal/service/prediction"
	"github.com/Reese0301/careerinfinance/internal/session"
)

// UnavailableReply is recorded when the endpoint could not be reached at all.
const UnavailableReply = "Error: unavailable"

var (
	ErrEmptyInput          = errors.New("message is empty")
	ErrEndpointUnavailable = errors.New("no endpoint configured for model")
)

// Predictor sends one question to a prediction endpoint.
type Predictor interface {
	Predict(ctx context.Context, endpoint config.Endpoint, question string) (prediction.Result, error)
}

// Service assembles prompts from session state and dispatches them.
type Service struct {
	predictor Predictor
	cfg       config.AdvisorConfig
	chain     compose.Runnable[*turnInput, *reply]
	now       func() time.Time

	// lifetime bounds in-flight turns; callers going away do not.
	lifetime context.Context
}

// TurnResult is what one submitted turn produced.
type TurnResult struct {
	UserMessage chat.Message `json:"userMessage"`
	Reply       chat.Message `json:"reply"`
	Model       mode.Model   `json:"model"`
	StatusCode  int          `json:"statusCode,omitempty"`
	ElapsedMS   int64        `json:"elapsedMs"`
}

// Elapsed returns the wall-clock time the endpoint took.
func (r *TurnResult) Elapsed() time.Duration {
	return time.Duration(r.ElapsedMS) * time.Millisecond
}

type turnInput struct {
	SessionID string
	Selection mode.Selection
	Endpoint  config.Endpoint
	Resume    string
	History   []chat.Message
	UserInput string
}

type outbound struct {
	SessionID string
	Model     mode.Model
	Endpoint  config.Endpoint
	Question  string
}

type reply struct {
	Text       string
	StatusCode int
}

// NewService compiles the assemble and dispatch steps into one chain.
func NewService(ctx context.Context, predictor Predictor, cfg config.AdvisorConfig) (*Service, error) {
	s := &Service{
		predictor: predictor,
		cfg:       cfg,
		now:       time.Now,
		lifetime:  ctx,
	}

	chain := compose.NewChain[*turnInput, *reply]()
	chain.AppendLambda(compose.InvokableLambda(s.assemble))
	chain.AppendLambda(compose.InvokableLambda(s.dispatch))

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile advisor chain: %w", err)
	}
	s.chain = runnable
	return s, nil
}

// SubmitTurn records the user's text, asks the endpoint selected by the
// session's mode and records the reply. Endpoint failures become reply text;
// the returned error covers only rejected input.
func (s *Service) SubmitTurn(ctx context.Context, state *session.State, text string) (*TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	release := state.BeginTurn()
	defer release()

	input, err := s.turnInput(state, text)
	if err != nil {
		return nil, err
	}
	sel := input.Selection

	userMsg, err := state.Append(chat.RoleUser, text)
	if err != nil {
		return nil, err
	}

	turnCtx, cancel := s.detach(ctx)
	defer cancel()

	start := s.now()
	out, err := s.chain.Invoke(turnCtx, input)
	if err != nil {
		log.Printf("[advisor] chain failed for session=%s: %v", state.ID(), err)
		out = &reply{Text: UnavailableReply}
	}
	elapsed := s.now().Sub(start)

	assistantMsg, err := state.Append(chat.RoleAssistant, out.Text)
	if err != nil {
		return nil, err
	}

	return &TurnResult{
		UserMessage: userMsg,
		Reply:       assistantMsg,
		Model:       sel.Model,
		StatusCode:  out.StatusCode,
		ElapsedMS:   elapsed.Milliseconds(),
	}, nil
}

// detach keeps ctx's values but drops its cancellation, so a turn that has
// been submitted runs to completion even if the caller disconnects. Only the
// service lifetime (server shutdown) can still abort it.
func (s *Service) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	turnCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if s.lifetime.Err() != nil {
		cancel()
	}
	stop := context.AfterFunc(s.lifetime, cancel)
	return turnCtx, func() {
		stop()
		cancel()
	}
}

// Preview returns the question SubmitTurn would send for text without
// sending it or touching the log.
func (s *Service) Preview(ctx context.Context, state *session.State, text string) (string, error) {
	input, err := s.turnInput(state, text)
	if err != nil {
		return "", err
	}
	out, err := s.assemble(ctx, input)
	if err != nil {
		return "", err
	}
	return out.Question, nil
}

// turnInput snapshots the session and resolves the endpoint for its model.
func (s *Service) turnInput(state *session.State, text string) (*turnInput, error) {
	view := state.TurnSnapshot(s.cfg.ContextLimit, s.cfg.IncludeWelcome)
	endpoint, ok := s.cfg.Endpoint(view.Selection.Model)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEndpointUnavailable, view.Selection.Model)
	}
	return &turnInput{
		SessionID: state.ID(),
		Selection: view.Selection,
		Endpoint:  endpoint,
		Resume:    view.Resume,
		History:   view.History,
		UserInput: text,
	}, nil
}

func (s *Service) assemble(_ context.Context, in *turnInput) (*outbound, error) {
	return &outbound{
		SessionID: in.SessionID,
		Model:     in.Selection.Model,
		Endpoint:  in.Endpoint,
		Question:  ComposeQuestion(InstructionPrefix(in.Selection), in.Resume, in.History, in.UserInput),
	}, nil
}

func (s *Service) dispatch(ctx context.Context, out *outbound) (*reply, error) {
	res, err := s.predictor.Predict(ctx, out.Endpoint, out.Question)
	if err != nil {
		log.Printf("[advisor] prediction failed for session=%s model=%s: %v", out.SessionID, out.Model, err)
		return &reply{Text: UnavailableReply}, nil
	}
	if res.Missing {
		log.Printf("[advisor] malformed prediction body for session=%s model=%s, recording empty reply", out.SessionID, out.Model)
	}

	log.Printf("[advisor] reply for session=%s model=%s status=%d length=%d", out.SessionID, out.Model, res.StatusCode, len(res.Text))
	return &reply{Text: res.Text, StatusCode: res.StatusCode}, nil
}
