package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jimdaga/first-sip/internal/app"
	"github.com/jimdaga/first-sip/internal/briefing"
)

// Responder continues a briefing conversation.
type Responder interface {
	Respond(ctx context.Context, history []briefing.Turn, message string) (briefing.Exchange, error)
}

func newChatCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Generate a briefing and ask follow-up questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			svc, err := app.NewBriefingService(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return RunChat(cmd.Context(), svc, cmd.InOrStdin(), cmd.OutOrStdout(), newRenderer(opts.plain))
		},
	}
}

// RunChat prints an opening briefing, then answers one line of input at a
// time until the user types exit or quit, or input ends. Only a failure of
// the opening briefing is returned; later failures are printed and the
// conversation continues with its history unchanged.
func RunChat(ctx context.Context, r Responder, in io.Reader, out io.Writer, render Renderer) error {
	fmt.Fprintln(out, statusStyle.Render("Generating your daily briefing..."))

	exchange, err := r.Respond(ctx, nil, "")
	if err != nil {
		return fmt.Errorf("failed to generate briefing: %w", err)
	}
	fmt.Fprintln(out, headerStyle.Render("Your Daily Briefing"))
	fmt.Fprint(out, render(exchange.Reply))
	history := exchange.Transcript

	fmt.Fprintln(out, statusStyle.Render("Ask a follow-up question, or type exit to quit."))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, promptStyle.Render("You: "))
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExit(line) {
			break
		}

		exchange, err := r.Respond(ctx, history, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintln(out, errorStyle.Render("Error: "+err.Error()))
			continue
		}
		fmt.Fprint(out, render(exchange.Reply))
		history = exchange.Transcript
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Fprintln(out, statusStyle.Render("Goodbye!"))
	return nil
}

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit":
		return true
	}
	return false
}
