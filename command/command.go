package command

import (
	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

// Command is an intent targeting one entity.
type Command interface {
	CommandType() string
}

// Event is a domain event a handler decides to append.
// Its exported fields are serialized into the payload.
type Event interface {
	EventType() string
	EventTags() eventstore.Tags
}

// EventMetadata is stored with every appended event.
type EventMetadata struct {
	MessageID     string `json:"messageId"`
	CausationID   string `json:"causationId"`
	CorrelationID string `json:"correlationId"`
	CommandType   string `json:"commandType"`
}
