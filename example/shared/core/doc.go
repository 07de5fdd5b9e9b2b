// Package core contains the domain events, identifiers, and shared entity definitions of the example
// domains: a racing league (drivers, teams, races, ratings), user accounts with email verification,
// a bike rental fleet, and hostel stays.
//
// Entity definitions that more than one command works on live here, so all of those commands
// are serialized on the same identity key. Definitions used by a single command live in its feature slice.
package core
