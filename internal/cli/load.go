package cli

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/dcbkit/dcb-runtime-go/example/shared/shell"
)

type loadedEntity struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Version uint   `json:"version"`
	State   any    `json:"state"`
}

func newLoadCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load <kind> <id>",
		Short: "Print the current state and version of an entity",
		Long: `Load an entity from the event log and print it as JSON.

Composite identifiers join their parts with "|", e.g. a rental target is "<userId>|<bikeId>".

Example:
  dcbctl load Driver driver-1
  dcbctl load Rental 'user-1|bike-7'`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}

			return shellEntityKinds(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			kind, ok := a.entities.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown kind %q, known kinds: %s", args[0], strings.Join(a.entities.Kinds(), ", "))
			}

			id, err := kind.ParseIdentifier(args[1])
			if err != nil {
				return err
			}

			state, version, err := kind.LoadState(cmd.Context(), a.bus.Dispatcher().Loader(), id)
			if err != nil {
				return err
			}

			out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(
				loadedEntity{Kind: kind.Kind(), ID: id.IdentityKey(), Version: version, State: state}, "", "  ")
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))

			return nil
		},
	}
}

func shellEntityKinds() []string {
	return shell.Entities().Kinds()
}
