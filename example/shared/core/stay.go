package core

import (
	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	GuestCheckedInEventType  = "GuestCheckedIn"
	GuestCheckedOutEventType = "GuestCheckedOut"
)

// GuestCheckedIn is tagged with the booking, the guest, and the container the guest sleeps in.
type GuestCheckedIn struct {
	BookingID   string `json:"bookingId"`
	GuestID     string `json:"guestId"`
	ContainerID string `json:"containerId"`
}

func (e GuestCheckedIn) EventType() string { return GuestCheckedInEventType }

func (e GuestCheckedIn) EventTags() eventstore.Tags {
	return stayTags(e.BookingID, e.GuestID, e.ContainerID)
}

type GuestCheckedOut struct {
	BookingID   string `json:"bookingId"`
	GuestID     string `json:"guestId"`
	ContainerID string `json:"containerId"`
}

func (e GuestCheckedOut) EventType() string { return GuestCheckedOutEventType }

func (e GuestCheckedOut) EventTags() eventstore.Tags {
	return stayTags(e.BookingID, e.GuestID, e.ContainerID)
}

func stayTags(bookingID, guestID, containerID string) eventstore.Tags {
	return eventstore.NewTags(
		eventstore.T(TagBooking, bookingID),
		eventstore.T(TagGuest, guestID),
		eventstore.T(TagContainer, containerID),
	)
}

// StayTarget is the composite identifier of a hostel stay: one booking, its guest, and their container.
type StayTarget struct {
	BookingID   string
	GuestID     string
	ContainerID string
}

func (t StayTarget) IdentityKey() string {
	return entity.CompositeKey(t.BookingID, t.GuestID, t.ContainerID)
}

// ParseStayTarget parses "<bookingID>|<guestID>|<containerID>".
func ParseStayTarget(raw string) (StayTarget, error) {
	parts, err := entity.SplitCompositeKey(raw, 3)
	if err != nil {
		return StayTarget{}, err
	}

	return StayTarget{BookingID: parts[0], GuestID: parts[1], ContainerID: parts[2]}, nil
}

// StayState spans a booking, a guest, and a container. The stream also holds earlier stays of the guest
// and of the container, so occupancy is keyed by id.
type StayState struct {
	ClosedBookings           map[string]bool   `json:"closedBookings"`
	ActiveBookingByGuest     map[string]string `json:"activeBookingByGuest"`
	ActiveBookingByContainer map[string]string `json:"activeBookingByContainer"`
}

func NewStayState() StayState {
	return StayState{
		ClosedBookings:           make(map[string]bool),
		ActiveBookingByGuest:     make(map[string]string),
		ActiveBookingByContainer: make(map[string]string),
	}
}

func (s StayState) BookingClosed(bookingID string) bool {
	return s.ClosedBookings[bookingID]
}

func (s StayState) ActiveBookingOfGuest(guestID string) (string, bool) {
	bookingID, ok := s.ActiveBookingByGuest[guestID]
	return bookingID, ok
}

func (s StayState) ActiveBookingOfContainer(containerID string) (string, bool) {
	bookingID, ok := s.ActiveBookingByContainer[containerID]
	return bookingID, ok
}

// CheckedIn reports whether the target booking is the active stay of both its guest and its container.
func (s StayState) CheckedIn(target StayTarget) bool {
	byGuest, guestIn := s.ActiveBookingOfGuest(target.GuestID)
	byContainer, containerTaken := s.ActiveBookingOfContainer(target.ContainerID)

	return guestIn && containerTaken && byGuest == target.BookingID && byContainer == target.BookingID
}

func (s StayState) ensureMaps() StayState {
	if s.ClosedBookings == nil || s.ActiveBookingByGuest == nil || s.ActiveBookingByContainer == nil {
		fresh := NewStayState()
		for k, v := range s.ClosedBookings {
			fresh.ClosedBookings[k] = v
		}
		for k, v := range s.ActiveBookingByGuest {
			fresh.ActiveBookingByGuest[k] = v
		}
		for k, v := range s.ActiveBookingByContainer {
			fresh.ActiveBookingByContainer[k] = v
		}

		return fresh
	}

	return s
}

// StayEntity decides on check-ins and check-outs of a hostel stay.
var StayEntity = entity.Define(
	"Stay",
	NewStayState,
	StayCriteria,
	entity.On(GuestCheckedInEventType, func(s StayState, e GuestCheckedIn) StayState {
		s = s.ensureMaps()
		s.ActiveBookingByGuest[e.GuestID] = e.BookingID
		s.ActiveBookingByContainer[e.ContainerID] = e.BookingID
		return s
	}),
	entity.On(GuestCheckedOutEventType, func(s StayState, e GuestCheckedOut) StayState {
		s = s.ensureMaps()
		s.ClosedBookings[e.BookingID] = true
		if s.ActiveBookingByGuest[e.GuestID] == e.BookingID {
			delete(s.ActiveBookingByGuest, e.GuestID)
		}
		if s.ActiveBookingByContainer[e.ContainerID] == e.BookingID {
			delete(s.ActiveBookingByContainer, e.ContainerID)
		}
		return s
	}),
).WithIDParser(ParseStayTarget)

// StayCriteria selects the stay events of the booking, of the guest, and of the container.
func StayCriteria(target StayTarget) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(GuestCheckedInEventType, GuestCheckedOutEventType).
		AndAllTagsOf(eventstore.T(TagBooking, target.BookingID)).
		OrMatching().
		AnyEventTypeOf(GuestCheckedInEventType, GuestCheckedOutEventType).
		AndAllTagsOf(eventstore.T(TagGuest, target.GuestID)).
		OrMatching().
		AnyEventTypeOf(GuestCheckedInEventType, GuestCheckedOutEventType).
		AndAllTagsOf(eventstore.T(TagContainer, target.ContainerID)).
		Finalize()
}
