package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jimdaga/first-sip/internal/briefing"
	"github.com/jimdaga/first-sip/internal/streams"
)

// watchGroup is the consumer group shared by every watching terminal, so
// each briefing is printed once.
const watchGroup = "briefing-watchers"

func newWatchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print scheduled briefings as they are generated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}
			if cfg.RedisURL == "" {
				return errors.New("watch requires REDIS_URL")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			consumerName := "cli-" + uuid.New().String()[:8]
			consumer, err := streams.NewConsumer(ctx, cfg.RedisURL, watchGroup, consumerName, logger)
			if err != nil {
				return err
			}
			defer consumer.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, statusStyle.Render("Waiting for briefings. Press Ctrl+C to stop."))

			err = consumer.Consume(ctx, PrintEvent(out, newRenderer(opts.plain), cfg.Location()))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

// PrintEvent returns a stream handler that prints each briefing.
func PrintEvent(out io.Writer, render Renderer, loc *time.Location) func(streams.BriefingEvent) error {
	return func(event streams.BriefingEvent) error {
		title := fmt.Sprintf("Briefing #%d (%s, %s)", event.BriefingID, event.Source,
			event.GeneratedAt.In(loc).Format(briefing.EventTimeLayout))
		fmt.Fprintln(out, headerStyle.Render(title))
		_, err := fmt.Fprint(out, render(event.Briefing))
		return err
	}
}
