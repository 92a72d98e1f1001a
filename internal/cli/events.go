package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/flightcore/service/event"
	"github.com/viant/flightcore/service/messaging/fs"
)

// newEventsCmd prints pending journaled events. Events stay pending for other
// consumers unless --drain is set, in which case each printed event is
// acknowledged and moved to completed/.
func newEventsCmd() *cobra.Command {
	var (
		basePath string
		follow   bool
		drain    bool
		poll     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print pending lifecycle events journaled by the fs vendor (--drain consumes them)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if basePath == "" {
				return fmt.Errorf("--base-path is required")
			}
			queue, err := fs.NewQueue[event.Event[any]](afs.New(), fs.DefaultConfig(path.Join(basePath, "any")))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := json.NewEncoder(cmd.OutOrStdout())
			next := browser(queue)
			if drain {
				next = drainer(queue)
			}
			for {
				printed, err := next(ctx, out)
				if err != nil {
					return err
				}
				if printed {
					continue
				}
				if !follow {
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(poll):
				}
			}
		},
	}
	cmd.Flags().StringVar(&basePath, "base-path", "", "Event journal root (events.basePath)")
	cmd.Flags().BoolVar(&follow, "follow", false, "Keep waiting for new events")
	cmd.Flags().BoolVar(&drain, "drain", false, "Acknowledge printed events, removing them from pending")
	cmd.Flags().DurationVar(&poll, "poll", 200*time.Millisecond, "Poll interval with --follow")
	return cmd
}

// printer writes the next batch of events and reports whether any were found.
type printer func(ctx context.Context, out *json.Encoder) (bool, error)

func browser(queue *fs.Queue[event.Event[any]]) printer {
	var cursor string
	return func(ctx context.Context, out *json.Encoder) (bool, error) {
		msgs, err := queue.Browse(ctx, cursor)
		if err != nil || len(msgs) == 0 {
			return false, err
		}
		for _, msg := range msgs {
			if err = out.Encode(msg.T()); err != nil {
				return false, err
			}
			cursor = msg.Name()
		}
		return true, nil
	}
}

func drainer(queue *fs.Queue[event.Event[any]]) printer {
	return func(ctx context.Context, out *json.Encoder) (bool, error) {
		msg, err := queue.Consume(ctx)
		if err != nil || msg == nil {
			return false, err
		}
		if err = out.Encode(msg.T()); err != nil {
			_ = msg.Nack(err)
			return false, err
		}
		if err = msg.Ack(); err != nil {
			logger.Warn("failed to ack event", "error", err)
		}
		return true, nil
	}
}
