// Package natsrelay publishes events delivered by a notify.Tailer to NATS JetStream.
//
// Each event becomes one message on "<prefix>.<event type>". The payload is the message body,
// the metadata and tags travel in headers. The message id is "<prefix>:<position>",
// so JetStream drops the duplicates an at-least-once redelivery produces within its duplicate window.
package natsrelay

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/notify"
)

const (
	HeaderEventType      = "Dcb-Event-Type"
	HeaderSequenceNumber = "Dcb-Sequence-Number"
	HeaderOccurredAt     = "Dcb-Occurred-At"
	HeaderMetadata       = "Dcb-Metadata"
	HeaderTag            = "Dcb-Tag"

	defaultSubjectPrefix = "dcb.events"
)

var (
	ErrEmptySubjectPrefix = errors.New("subject prefix must not be empty")
	ErrNilPublisher       = errors.New("publisher must not be nil")
	ErrPublishingFailed   = errors.New("publishing to jetstream failed")
)

// Publisher is the part of jetstream.JetStream the relay needs.
type Publisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Relay turns events into JetStream messages.
type Relay struct {
	publisher Publisher
	prefix    string
	logger    eventstore.Logger
}

// Option configures a Relay.
type Option func(*Relay) error

// WithSubjectPrefix sets the subject prefix, the default is "dcb.events".
func WithSubjectPrefix(prefix string) Option {
	return func(r *Relay) error {
		if prefix == "" {
			return ErrEmptySubjectPrefix
		}

		r.prefix = prefix

		return nil
	}
}

// WithLogger logs every acknowledged publish at debug level.
func WithLogger(logger eventstore.Logger) Option {
	return func(r *Relay) error {
		r.logger = logger
		return nil
	}
}

// NewRelay creates a Relay publishing with publisher, usually a jetstream.JetStream.
func NewRelay(publisher Publisher, options ...Option) (*Relay, error) {
	if publisher == nil {
		return nil, ErrNilPublisher
	}

	r := &Relay{publisher: publisher, prefix: defaultSubjectPrefix}
	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Subscriber returns the relay as a notify.Subscriber.
func (r *Relay) Subscriber() notify.Subscriber {
	return r.Publish
}

// Publish sends one event and waits for the JetStream acknowledgement.
func (r *Relay) Publish(ctx context.Context, event eventstore.StorableEvent) error {
	msg := r.MessageFor(event)

	ack, err := r.publisher.PublishMsg(ctx, msg)
	if err != nil {
		return errors.Join(ErrPublishingFailed, err)
	}

	if r.logger != nil && ack != nil {
		r.logger.Debug("natsrelay: event published",
			"subject", msg.Subject,
			"sequence_number", event.SequenceNumber,
			"stream", ack.Stream,
			"stream_sequence", ack.Sequence,
			"duplicate", ack.Duplicate,
		)
	}

	return nil
}

// MessageFor builds the message for event.
func (r *Relay) MessageFor(event eventstore.StorableEvent) *nats.Msg {
	position := strconv.FormatUint(uint64(event.SequenceNumber), 10)

	msg := nats.NewMsg(r.prefix + "." + event.EventType)
	msg.Data = event.PayloadJSON
	msg.Header.Set(nats.MsgIdHdr, r.prefix+":"+position)
	msg.Header.Set(HeaderEventType, event.EventType)
	msg.Header.Set(HeaderSequenceNumber, position)
	msg.Header.Set(HeaderOccurredAt, event.OccurredAt.UTC().Format(time.RFC3339Nano))
	msg.Header.Set(HeaderMetadata, string(event.MetadataJSON))

	for _, tag := range event.Tags {
		msg.Header.Add(HeaderTag, tag.String())
	}

	return msg
}

// EnsureStream creates or updates a file backed stream that captures all subjects below prefix.
func EnsureStream(ctx context.Context, js jetstream.JetStream, name string, prefix string) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       name,
		Subjects:   []string{prefix + ".>"},
		Storage:    jetstream.FileStorage,
		Duplicates: 2 * time.Minute,
	})
}

// Connect opens a NATS connection and a JetStream context on it. The returned func closes the connection.
func Connect(url string) (jetstream.JetStream, func(), error) {
	nc, err := nats.Connect(url, nats.MaxReconnects(3))
	if err != nil {
		return nil, nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	return js, nc.Close, nil
}
