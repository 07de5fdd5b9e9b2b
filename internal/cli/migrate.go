package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dcbkit/dcb-runtime-go/example/shared/shell/config"
)

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables of the configured engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			migrator, ok := a.store.Log.(config.Migrator)
			if !ok {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: schema is managed on open\n", a.cfg.Engine)
				return nil
			}

			if err := migrator.CreateSchema(cmd.Context()); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: schema created\n", a.cfg.Engine)

			return nil
		},
	}
}
