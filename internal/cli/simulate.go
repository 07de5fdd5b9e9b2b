package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/createrace"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/raterace"
	"github.com/dcbkit/dcb-runtime-go/example/shared/core"
)

var ErrLostEvents = errors.New("accepted ratings and stored ratings differ")

type simulateOptions struct {
	*RootOptions
	RaceID  string
	Users   int
	Ratings int
}

func newSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &simulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Rate one race from many concurrent users and check that no rating is lost",
		Long: `Create a race if needed, then let --users goroutines rate it --ratings times each.
All ratings target the same entity, so they are serialized per process and checked
against concurrent writers by the event log. At the end the stored ratings are counted.

With DCB_METRICS_ADDR set, Prometheus metrics are served on /metrics while it runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.RaceID, "race", "race-simulated", "race id")
	cmd.Flags().IntVar(&opts.Users, "users", 20, "concurrent users")
	cmd.Flags().IntVar(&opts.Ratings, "ratings", 5, "ratings per user")

	return cmd
}

func runSimulate(cmd *cobra.Command, opts *simulateOptions) error {
	ctx := cmd.Context()

	a, err := opts.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if a.cfg.MetricsAddr != "" {
		stopMetrics := serveMetrics(a)
		defer stopMetrics()
	}

	if _, err := a.bus.Dispatch(ctx, createrace.BuildCommand(opts.RaceID, time.Now().Format(time.DateOnly), "Simulated Ring")); err != nil {
		return err
	}

	before, err := countRatings(ctx, a, opts.RaceID)
	if err != nil {
		return err
	}

	var accepted, retries atomic.Int64
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for u := range opts.Users {
		userID := fmt.Sprintf("user-%d", u)

		g.Go(func() error {
			for r := range opts.Ratings {
				result, err := a.bus.Dispatch(gctx, raterace.BuildCommand(opts.RaceID, userID, 1+(u+r)%10, ""))
				if err != nil {
					return err
				}

				if result.Outcome == command.Accepted {
					accepted.Add(1)
				}
				retries.Add(int64(result.RetryAttempts))
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	after, err := countRatings(ctx, a, opts.RaceID)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "accepted=%d stored=%d retries=%d elapsed=%s rate=%.0f/s\n",
		accepted.Load(), after-before, retries.Load(), elapsed.Round(time.Millisecond),
		float64(accepted.Load())/elapsed.Seconds())

	if int64(after-before) != accepted.Load() {
		return fmt.Errorf("%w: accepted %d, stored %d", ErrLostEvents, accepted.Load(), after-before)
	}

	return nil
}

func countRatings(ctx context.Context, a *app, raceID string) (int, error) {
	events, _, err := a.store.Log.Query(ctx, raterace.BuildEventFilter(core.RaceID(raceID)))
	if err != nil {
		return 0, err
	}

	n := 0
	for _, e := range events {
		if e.EventType == core.RaceRatedEventType {
			n++
		}
	}

	return n, nil
}

func serveMetrics(a *app) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.obs.Registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.obs.Logger.Error("metrics endpoint stopped", "error", err.Error())
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = server.Shutdown(ctx)
	}
}
