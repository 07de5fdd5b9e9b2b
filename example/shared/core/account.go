package core

import (
	"github.com/dcbkit/dcb-runtime-go/entity"
	"github.com/dcbkit/dcb-runtime-go/eventstore"
)

const (
	AccountCreatedEventType          = "AccountCreated"
	EmailVerifiedEventType           = "EmailVerified"
	AccountMarkedUnverifiedEventType = "AccountMarkedUnverified"
)

type AccountCreated struct {
	Email             string `json:"email"`
	VerificationToken string `json:"verificationToken"`
}

func (e AccountCreated) EventType() string { return AccountCreatedEventType }

func (e AccountCreated) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T(TagEmail, e.Email))
}

type EmailVerified struct {
	Email string `json:"email"`
}

func (e EmailVerified) EventType() string { return EmailVerifiedEventType }

func (e EmailVerified) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T(TagEmail, e.Email))
}

// AccountMarkedUnverified is appended when the verification deadline passed, the token is expired from then on.
type AccountMarkedUnverified struct {
	Email string `json:"email"`
}

func (e AccountMarkedUnverified) EventType() string { return AccountMarkedUnverifiedEventType }

func (e AccountMarkedUnverified) EventTags() eventstore.Tags {
	return eventstore.NewTags(eventstore.T(TagEmail, e.Email))
}

// AccountStatus is the verification lifecycle, the zero value means no account exists for the email.
type AccountStatus string

const (
	AccountPending    AccountStatus = "PENDING"
	AccountVerified   AccountStatus = "VERIFIED"
	AccountUnverified AccountStatus = "UNVERIFIED"
)

type AccountState struct {
	Status            AccountStatus `json:"status"`
	VerificationToken string        `json:"verificationToken"`
}

func (s AccountState) Exists() bool {
	return s.Status != ""
}

// AccountEntity is the account registration lifecycle, keyed by email.
var AccountEntity = entity.Define(
	"Account",
	func() AccountState { return AccountState{} },
	AccountCriteria,
	entity.On(AccountCreatedEventType, func(s AccountState, e AccountCreated) AccountState {
		s.Status = AccountPending
		s.VerificationToken = e.VerificationToken
		return s
	}),
	entity.On(EmailVerifiedEventType, func(s AccountState, _ EmailVerified) AccountState {
		s.Status = AccountVerified
		return s
	}),
	entity.On(AccountMarkedUnverifiedEventType, func(s AccountState, _ AccountMarkedUnverified) AccountState {
		s.Status = AccountUnverified
		return s
	}),
).WithIDParser(ParseEmail)

func AccountCriteria(email Email) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(AccountCreatedEventType, EmailVerifiedEventType, AccountMarkedUnverifiedEventType).
		AndAllTagsOf(eventstore.T(TagEmail, string(email))).
		Finalize()
}
