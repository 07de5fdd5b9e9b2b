// Package cli implements the dcbctl commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/example/shared/shell"
	"github.com/dcbkit/dcb-runtime-go/example/shared/shell/config"
)

// RootOptions holds the global flags. Flags that were set win over the environment.
type RootOptions struct {
	Verbose    bool
	Engine     string
	SQLitePath string

	// Environment replaces the process environment, for tests.
	Environment map[string]string

	cfg config.Config
}

// NewRootCommand creates the dcbctl command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dcbctl",
		Short:         "Operate an event log of the DCB runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&opts.Engine, "engine", "", "event log engine (memory|sqlite|postgres), overrides DCB_ENGINE")
	cmd.PersistentFlags().StringVar(&opts.SQLitePath, "sqlite-path", "", "sqlite database file, overrides DCB_SQLITE_PATH")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newDispatchCommand(opts))
	cmd.AddCommand(newLoadCommand(opts))
	cmd.AddCommand(newTailCommand(opts))
	cmd.AddCommand(newSimulateCommand(opts))

	return cmd
}

func (o *RootOptions) loadConfig(cmd *cobra.Command) error {
	var cfg config.Config
	var err error

	if o.Environment != nil {
		cfg, err = config.LoadFrom(o.Environment)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Engine = o.Engine
	}
	if flags.Changed("sqlite-path") {
		cfg.SQLitePath = o.SQLitePath
	}
	if o.Verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg

	return nil
}

// app is an opened event log with the example bus on top.
type app struct {
	cfg      config.Config
	obs      config.Observability
	store    config.Store
	bus      *command.Bus
	entities *entity.Registry
}

func (o *RootOptions) open(ctx context.Context, logs io.Writer) (*app, error) {
	obs := config.NewObservability(o.cfg, logs)
	if err := obs.EnableOTLP(ctx, o.cfg.OTLP); err != nil {
		return nil, err
	}

	store, err := config.OpenEventLog(ctx, o.cfg, obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("open %s event log: %w", o.cfg.Engine, err)
	}

	dispatcherOptions := []command.Option{
		command.WithLogger(obs.Logger),
		command.WithMetrics(obs.EventstoreMetrics()),
		command.WithRetryOptions(
			command.WithMaxAttempts(o.cfg.Retry.MaxAttempts),
			command.WithBaseDelay(o.cfg.Retry.BaseDelay),
			command.WithJitterFactor(o.cfg.Retry.JitterFactor),
		),
	}
	if store.Snapshots != nil {
		dispatcherOptions = append(dispatcherOptions, command.WithSnapshotStore(store.Snapshots))
	}
	if tracing := obs.EventstoreTracing(); tracing != nil {
		dispatcherOptions = append(dispatcherOptions, command.WithTracing(tracing))
	}

	dispatcher, err := command.NewDispatcher(store.Log, dispatcherOptions...)
	if err != nil {
		_ = store.Close()
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	return &app{
		cfg:      o.cfg,
		obs:      obs,
		store:    store,
		bus:      shell.NewBus(dispatcher, command.UUIDGenerator{}),
		entities: shell.Entities(),
	}, nil
}

func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return errors.Join(a.store.Close(), a.obs.Shutdown(ctx))
}
