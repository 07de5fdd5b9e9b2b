package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

// ErrMappingToEventMetadataFailed is returned when metadata conversion fails.
var ErrMappingToEventMetadataFailed = errors.New("mapping to event metadata failed")

// EventMetadataFrom extracts the metadata the dispatcher stored with an event.
func EventMetadataFrom(storableEvent eventstore.StorableEvent) (command.EventMetadata, error) {
	metadata := new(command.EventMetadata)
	err := jsoniter.ConfigFastest.Unmarshal(storableEvent.MetadataJSON, metadata)
	if err != nil {
		return command.EventMetadata{}, errors.Join(ErrMappingToEventMetadataFailed, err)
	}

	return *metadata, nil
}
