package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Reese0301/careerinfinance/internal/auth"
	"github.com/Reese0301/careerinfinance/internal/config"
	"github.com/Reese0301/careerinfinance/internal/model/mode"
	"github.com/Reese0301/careerinfinance/internal/service/advisor"
	chatservice "github.com/Reese0301/careerinfinance/internal/service/chat"
	"github.com/Reese0301/careerinfinance/internal/service/prediction"
	"github.com/Reese0301/careerinfinance/internal/session"
)

type options struct {
	model      string
	outlook    string
	style      string
	resumeFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "careerchat",
		Short: "Career-in-finance advisor in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.model, "model", "m", "", "mentor or expert")
	rootCmd.PersistentFlags().StringVar(&opts.outlook, "outlook", "", "pessimistic, practical or optimistic")
	rootCmd.PersistentFlags().StringVar(&opts.style, "style", "", "instructive, default or socratic")
	rootCmd.PersistentFlags().StringVar(&opts.resumeFile, "resume-file", "", "plain-text resume to attach")

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts)
		},
	}

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, strings.Join(args, " "))
		},
	}

	hashCmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for AUTH_USERS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	rootCmd.AddCommand(chatCmd, askCmd, hashCmd)
	return rootCmd
}

// openSession loads configuration and prepares a session with the flag selection applied.
func openSession(ctx context.Context, opts *options) (*advisor.Service, *session.State, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	for _, warning := range cfg.Advisor.Warnings() {
		log.Printf("warning: %s", warning)
	}

	advisorSvc, err := advisor.NewService(ctx, prediction.NewClient(nil), cfg.Advisor)
	if err != nil {
		return nil, nil, err
	}

	state, err := chatservice.NewService(cfg.Advisor.Welcome).CreateSession(ctx)
	if err != nil {
		return nil, nil, err
	}

	if err := applyOptions(state, opts); err != nil {
		return nil, nil, err
	}
	return advisorSvc, state, nil
}

func applyOptions(state *session.State, opts *options) error {
	sel, err := mode.ParseSelection(opts.model, opts.outlook, opts.style)
	if err != nil {
		return err
	}
	if opts.resumeFile != "" {
		if err := uploadResumeFile(state, opts.resumeFile); err != nil {
			return err
		}
	}
	// Expert drops the resume, so the selection goes last.
	return state.SelectMode(sel)
}

func runChat(ctx context.Context, opts *options) error {
	advisorSvc, state, err := openSession(ctx, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newChatModel(ctx, advisorSvc, state), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run chat: %w", err)
	}
	return nil
}

func runAsk(cmd *cobra.Command, opts *options, question string) error {
	advisorSvc, state, err := openSession(cmd.Context(), opts)
	if err != nil {
		return err
	}

	result, err := advisorSvc.SubmitTurn(cmd.Context(), state, question)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Reply.Content)
	return nil
}
