// Package cancelrace implements the Cancel Race use case.
package cancelrace
