// Package command runs commands against entities of the entity package.
//
// A Handler decides on a command given the current entity state and returns a Decision:
//   - Accept: events to append plus a result for the caller
//   - Reject: an expected business outcome, returned as a normal result, nothing is appended
//   - Fail: an unmodeled condition, returned as an error
//   - NoOp: nothing to change, returned as a normal result
//
// The Dispatcher serializes all commands against one entity identity, loads the state, lets the
// handler decide, and appends with the loaded stream version as the expected version.
// A concurrency conflict reloads and decides again, with exponential backoff, a bounded number of times.
// Commands against different identities run fully concurrently.
package command
