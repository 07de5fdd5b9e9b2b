// Package expireverification implements the verification deadline of accounts.
//
// It is dispatched when the verification period of an account ended, e.g. by a scheduler.
// Accounts that are still pending are marked unverified, their token no longer verifies the email.
package expireverification
