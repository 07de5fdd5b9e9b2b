package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/shared/shell"
)

var ErrCommandsFailed = errors.New("some commands failed")

type dispatchOptions struct {
	*RootOptions
	File string
}

func newDispatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &dispatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dispatch -f <commands.yaml>",
		Short: "Dispatch a batch of commands in file order",
		Long: `Dispatch every command of a YAML batch file through the example command bus.

Rejected commands are regular results. Failed commands are reported on stderr
and make the command exit with an error after the whole batch ran.

Example:
  dcbctl dispatch -f commands.yaml
  cat commands.yaml | dcbctl dispatch -f -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDispatch(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "batch file, - for stdin (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runDispatch(cmd *cobra.Command, opts *dispatchOptions) error {
	in, closeIn, err := openInput(cmd, opts.File)
	if err != nil {
		return err
	}
	defer closeIn()

	commands, err := shell.DecodeCommands(in)
	if err != nil {
		return err
	}

	a, err := opts.open(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	out := cmd.OutOrStdout()
	failed := 0

	for i, c := range commands {
		result, dispatchErr := a.bus.Dispatch(cmd.Context(), c)
		if dispatchErr != nil {
			failed++
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "#%d %s failed: %v\n", i+1, c.CommandType(), dispatchErr)

			continue
		}

		value, _ := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(result.Value)
		_, _ = fmt.Fprintf(out, "#%d %s %s version=%d events=%d retries=%d %s\n",
			i+1, c.CommandType(), command.StatusOf(result.Outcome), result.Version, result.AppendedEvents, result.RetryAttempts, value)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrCommandsFailed, failed, len(commands))
	}

	return nil
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	return f, func() { _ = f.Close() }, nil
}
