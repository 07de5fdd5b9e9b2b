// Package raterace implements the Rate Race use case.
//
// Any number of users rate the same race, so the commands of a popular race contend for one identity key.
// A race without events can be rated. Rating a cancelled race is an error, not a business rejection.
package raterace
