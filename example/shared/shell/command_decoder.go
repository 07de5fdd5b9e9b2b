package shell

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/addbiketofleet"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/cancelrace"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/checkinguest"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/checkoutguest"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/createaccount"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/createdriver"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/createrace"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/createteam"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/expireverification"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/ratedriverperformance"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/raterace"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/removebikefromfleet"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/removedriver"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/requestbikerental"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/returnbike"
	"github.com/dcbkit/dcb-runtime-go/example/features/command/verifyemail"
)

var (
	ErrDecodingCommandsFailed = errors.New("decoding commands failed")
	ErrMissingCommandBody     = errors.New("command body is missing")
)

// commandDocument is one entry of a batch file:
//
//	- type: CreateDriver
//	  command:
//	    teamId: t1
//	    driverId: d1
//	    driverName: Lewis
type commandDocument struct {
	Type    string    `yaml:"type"`
	Command yaml.Node `yaml:"command"`
}

type commandDecoder func(node *yaml.Node) (command.Command, error)

var commandDecoders = buildCommandDecoders(
	decoderFor[createdriver.Command],
	decoderFor[removedriver.Command],
	decoderFor[createteam.Command],
	decoderFor[createrace.Command],
	decoderFor[cancelrace.Command],
	decoderFor[raterace.Command],
	decoderFor[ratedriverperformance.Command],
	decoderFor[createaccount.Command],
	decoderFor[verifyemail.Command],
	decoderFor[expireverification.Command],
	decoderFor[addbiketofleet.Command],
	decoderFor[removebikefromfleet.Command],
	decoderFor[requestbikerental.Command],
	decoderFor[returnbike.Command],
	decoderFor[checkinguest.Command],
	decoderFor[checkoutguest.Command],
)

func buildCommandDecoders(factories ...func() (string, commandDecoder)) map[string]commandDecoder {
	decoders := make(map[string]commandDecoder, len(factories))
	for _, factory := range factories {
		commandType, decode := factory()
		decoders[commandType] = decode
	}

	return decoders
}

func decoderFor[C command.Command]() (string, commandDecoder) {
	var zero C

	return zero.CommandType(), func(node *yaml.Node) (command.Command, error) {
		var c C
		if err := node.Decode(&c); err != nil {
			return nil, err
		}

		return c, nil
	}
}

// DecodeCommands reads a YAML list of typed commands.
func DecodeCommands(r io.Reader) ([]command.Command, error) {
	var documents []commandDocument
	if err := yaml.NewDecoder(r).Decode(&documents); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, errors.Join(ErrDecodingCommandsFailed, err)
	}

	commands := make([]command.Command, 0, len(documents))
	for i, document := range documents {
		decode, ok := commandDecoders[document.Type]
		if !ok {
			return nil, errors.Join(
				ErrDecodingCommandsFailed,
				fmt.Errorf("%w: entry %d has type %q", command.ErrUnknownCommandType, i, document.Type),
			)
		}

		if document.Command.Kind == 0 {
			return nil, errors.Join(ErrDecodingCommandsFailed, fmt.Errorf("%w: entry %d", ErrMissingCommandBody, i))
		}

		c, err := decode(&document.Command)
		if err != nil {
			return nil, errors.Join(ErrDecodingCommandsFailed, fmt.Errorf("entry %d: %w", i, err))
		}

		commands = append(commands, c)
	}

	return commands, nil
}

// CommandTypes returns the command types DecodeCommands understands.
func CommandTypes() []string {
	types := make([]string, 0, len(commandDecoders))
	for commandType := range commandDecoders {
		types = append(types, commandType)
	}
	sort.Strings(types)

	return types
}
