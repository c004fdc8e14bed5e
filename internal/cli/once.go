package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jimdaga/first-sip/internal/app"
	"github.com/jimdaga/first-sip/internal/briefing"
)

// Generator produces a single-shot briefing.
type Generator interface {
	Generate(ctx context.Context) (briefing.Exchange, error)
}

type onceOptions struct {
	showPrompt bool
}

func newOnceCommand(opts *rootOptions) *cobra.Command {
	o := &onceOptions{}
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Print a single briefing and exit",
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
			return RunOnce(cmd.Context(), svc, cmd.OutOrStdout(), newRenderer(opts.plain), o.showPrompt)
		},
	}
	cmd.Flags().BoolVar(&o.showPrompt, "show-prompt", false, "also print the assembled prompt")
	return cmd
}

// RunOnce prints one briefing. With showPrompt the prompt sent to the AI
// service is printed first.
func RunOnce(ctx context.Context, g Generator, out io.Writer, render Renderer, showPrompt bool) error {
	exchange, err := g.Generate(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate briefing: %w", err)
	}
	if showPrompt && len(exchange.Transcript) > 0 {
		fmt.Fprintln(out, headerStyle.Render("Prompt"))
		fmt.Fprintln(out, exchange.Transcript[0].Text())
	}
	fmt.Fprintln(out, headerStyle.Render("Your Daily Briefing"))
	fmt.Fprint(out, render(exchange.Reply))
	return nil
}
