package command_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dcbkit/dcb-runtime-go/command"
	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/eventstore/memengine"
)

const (
	memberRegistered = "MemberRegistered"
	memberRemoved    = "MemberRemoved"
	memberRenamed    = "MemberRenamed"
	visitLogged      = "VisitLogged"
)

var errUnknownMember = errors.New("member does not exist")

type memberStatus string

const (
	statusRegistered memberStatus = "registered"
	statusRemoved    memberStatus = "removed"
)

type memberState struct {
	Status memberStatus
	Name   string
	Visits int
}

type MemberRegistered struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
}

func (MemberRegistered) EventType() string { return memberRegistered }
func (e MemberRegistered) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T("Member", e.MemberID))
}

type MemberRemoved struct {
	MemberID string `json:"memberId"`
}

func (MemberRemoved) EventType() string { return memberRemoved }
func (e MemberRemoved) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T("Member", e.MemberID))
}

type MemberRenamed struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
}

func (MemberRenamed) EventType() string { return memberRenamed }
func (e MemberRenamed) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T("Member", e.MemberID))
}

type VisitLogged struct {
	MemberID string `json:"memberId"`
	Visit    int    `json:"visit"`
}

func (VisitLogged) EventType() string { return visitLogged }
func (e VisitLogged) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T("Member", e.MemberID))
}

type unencodableEvent struct {
	MemberID string
	Broken   chan int
}

func (unencodableEvent) EventType() string { return "Broken" }
func (e unencodableEvent) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T("Member", e.MemberID))
}

type outcomeResult struct {
	Success bool
	Message string
}

var memberKind = entity.Define(
	"Member",
	func() memberState { return memberState{} },
	func(id entity.ID) eventstore.Filter {
		return eventstore.BuildEventFilter().
			Matching().
			AnyEventTypeOf(memberRegistered, memberRemoved, memberRenamed, visitLogged).
			AndAllTagsOf(eventstore.T("Member", id.String())).
			Finalize()
	},
	entity.On(memberRegistered, func(s memberState, e MemberRegistered) memberState {
		s.Status = statusRegistered
		s.Name = e.Name
		return s
	}),
	entity.On(memberRemoved, func(s memberState, _ MemberRemoved) memberState {
		s.Status = statusRemoved
		return s
	}),
	entity.On(memberRenamed, func(s memberState, e MemberRenamed) memberState {
		s.Name = e.Name
		return s
	}),
	entity.On(visitLogged, func(s memberState, e VisitLogged) memberState {
		s.Visits = e.Visit
		return s
	}),
)

type RegisterMember struct {
	MemberID string
	Name     string
}

func (RegisterMember) CommandType() string { return "RegisterMember" }

var registerMember = command.Handler[RegisterMember, entity.ID, memberState]{
	Entity: memberKind,
	Target: func(cmd RegisterMember) entity.ID { return entity.ID(cmd.MemberID) },
	Decide: func(cmd RegisterMember, state memberState) command.Decision {
		if state.Status == statusRegistered {
			return command.Reject(outcomeResult{Success: false, Message: "Member already exists"})
		}

		return command.Accept(
			outcomeResult{Success: true},
			MemberRegistered{MemberID: cmd.MemberID, Name: cmd.Name},
		)
	},
}

type RemoveMember struct {
	MemberID string
}

func (RemoveMember) CommandType() string { return "RemoveMember" }

var removeMember = command.Handler[RemoveMember, entity.ID, memberState]{
	Entity: memberKind,
	Target: func(cmd RemoveMember) entity.ID { return entity.ID(cmd.MemberID) },
	Decide: func(cmd RemoveMember, state memberState) command.Decision {
		if state.Status != statusRegistered {
			return command.Reject(outcomeResult{Success: false, Message: "Member does not exist"})
		}

		return command.Accept(outcomeResult{Success: true}, MemberRemoved{MemberID: cmd.MemberID})
	},
}

type RenameMember struct {
	MemberID string
	Name     string
}

func (RenameMember) CommandType() string { return "RenameMember" }

var renameMember = command.Handler[RenameMember, entity.ID, memberState]{
	Entity: memberKind,
	Target: func(cmd RenameMember) entity.ID { return entity.ID(cmd.MemberID) },
	Decide: func(cmd RenameMember, state memberState) command.Decision {
		if state.Status == "" {
			return command.Fail(errUnknownMember)
		}

		if state.Name == cmd.Name {
			return command.NoOp(outcomeResult{Success: true})
		}

		return command.Accept(outcomeResult{Success: true}, MemberRenamed{MemberID: cmd.MemberID, Name: cmd.Name})
	},
}

type LogVisit struct {
	MemberID string
}

func (LogVisit) CommandType() string { return "LogVisit" }

// logVisit appends the next visit number, so lost updates show up as duplicate numbers.
var logVisit = command.Handler[LogVisit, entity.ID, memberState]{
	Entity: memberKind,
	Target: func(cmd LogVisit) entity.ID { return entity.ID(cmd.MemberID) },
	Decide: func(cmd LogVisit, state memberState) command.Decision {
		return command.Accept(state.Visits+1, VisitLogged{MemberID: cmd.MemberID, Visit: state.Visits + 1})
	},
}

type BreakMember struct {
	MemberID string
}

func (BreakMember) CommandType() string { return "BreakMember" }

var breakMember = command.Handler[BreakMember, entity.ID, memberState]{
	Entity: memberKind,
	Target: func(cmd BreakMember) entity.ID { return entity.ID(cmd.MemberID) },
	Decide: func(cmd BreakMember, _ memberState) command.Decision {
		return command.Accept(nil, unencodableEvent{MemberID: cmd.MemberID, Broken: make(chan int)})
	},
}

func givenMemoryEventLog(t *testing.T) *memengine.EventStore {
	t.Helper()

	log, err := memengine.NewEventStore()
	require.NoError(t, err)

	return log
}

func givenDispatcher(t *testing.T, log eventstore.EventLog, options ...command.Option) *command.Dispatcher {
	t.Helper()

	options = append([]command.Option{
		command.WithClock(func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }),
		command.WithIDGenerator(command.NewSequenceGenerator("msg")),
	}, options...)

	dispatcher, err := command.NewDispatcher(log, options...)
	require.NoError(t, err)

	return dispatcher
}

func memberStream(t *testing.T, log eventstore.EventLog, memberID string) eventstore.StorableEvents {
	t.Helper()

	events, _, err := log.Query(context.Background(), memberKind.Criteria(entity.ID(memberID)))
	require.NoError(t, err)

	return events
}

// conflictingEventLog reports a concurrency conflict for the first conflicts appends.
type conflictingEventLog struct {
	eventstore.EventLog

	mu          sync.Mutex
	conflicts   int
	appendCalls int
}

func (l *conflictingEventLog) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expected eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additional ...eventstore.StorableEvent,
) error {

	l.mu.Lock()
	l.appendCalls++
	conflict := l.conflicts > 0
	if conflict {
		l.conflicts--
	}
	l.mu.Unlock()

	if conflict {
		return eventstore.ErrConcurrencyConflict
	}

	return l.EventLog.Append(ctx, filter, expected, event, additional...)
}

func (l *conflictingEventLog) AppendCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.appendCalls
}

// failingEventLog fails every query with err.
type failingEventLog struct {
	eventstore.EventLog
	err error
}

func (l failingEventLog) Query(context.Context, eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint, error) {
	return nil, 0, l.err
}
