package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/notify"
	"github.com/dcbkit/dcb-runtime-go/notify/natsrelay"
)

var ErrMissingNATSURL = errors.New("--nats needs DCB_NATS_URL")

type tailOptions struct {
	*RootOptions
	ToNATS   bool
	From     uint
	Once     bool
	Interval time.Duration
}

func newTailCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tailOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow the event log and print or relay new events",
		Long: `Follow the event log from a position and print every event, or publish it to NATS JetStream.

Relaying needs DCB_NATS_URL. The stream DCB_NATS_STREAM is created on first use.

Example:
  dcbctl tail --from 120
  dcbctl tail --nats`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTail(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.ToNATS, "nats", false, "publish events to NATS JetStream instead of printing them")
	cmd.Flags().UintVar(&opts.From, "from", 0, "start after this position")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "deliver what is there and exit")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 500*time.Millisecond, "poll interval")

	return cmd
}

func runTail(cmd *cobra.Command, opts *tailOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := opts.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	subscriber, closeSubscriber, err := opts.subscriber(ctx, cmd, a)
	if err != nil {
		return err
	}
	defer closeSubscriber()

	checkpoints := notify.NewMemoryCheckpointStore()
	if err := checkpoints.SaveCheckpoint(ctx, "dcbctl", opts.From); err != nil {
		return err
	}

	tailer, err := notify.NewTailer(a.store.Log, "dcbctl", subscriber,
		notify.WithCheckpointStore(checkpoints),
		notify.WithPollInterval(opts.Interval),
		notify.WithLogger(a.obs.Logger),
		notify.WithMetrics(a.obs.EventstoreMetrics()),
	)
	if err != nil {
		return err
	}

	if opts.Once {
		_, err := tailer.Poll(ctx)
		return err
	}

	return tailer.Run(ctx)
}

func (o *tailOptions) subscriber(ctx context.Context, cmd *cobra.Command, a *app) (notify.Subscriber, func(), error) {
	if !o.ToNATS {
		out := cmd.OutOrStdout()

		return func(_ context.Context, e eventstore.StorableEvent) error {
			_, err := fmt.Fprintf(out, "%d\t%s\t%s\t%v\t%s\n",
				e.SequenceNumber, e.OccurredAt.Format(time.RFC3339Nano), e.EventType, e.Tags, e.PayloadJSON)

			return err
		}, func() {}, nil
	}

	if a.cfg.NATS.URL == "" {
		return nil, nil, ErrMissingNATSURL
	}

	js, closeConn, err := natsrelay.Connect(a.cfg.NATS.URL)
	if err != nil {
		return nil, nil, err
	}

	if _, err := natsrelay.EnsureStream(ctx, js, a.cfg.NATS.Stream, a.cfg.NATS.SubjectPrefix); err != nil {
		closeConn()
		return nil, nil, err
	}

	relay, err := natsrelay.NewRelay(js, natsrelay.WithSubjectPrefix(a.cfg.NATS.SubjectPrefix), natsrelay.WithLogger(a.obs.Logger))
	if err != nil {
		closeConn()
		return nil, nil, err
	}

	return relay.Subscriber(), closeConn, nil
}
