// Package createteam implements the Create Team use case.
package createteam
