// Package createaccount implements the Create Account use case.
//
// The verification token is the only generated value of the decision, it comes from an injected
// command.IDGenerator so tests can make it deterministic.
package createaccount
