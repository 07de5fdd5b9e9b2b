// Package spies provides recording test doubles for the observability interfaces of the eventstore package.
package spies
