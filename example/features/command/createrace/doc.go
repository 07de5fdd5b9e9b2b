// Package createrace implements the Create Race use case.
//
// RaceCreated is tagged with every participating driver as well as the race.
package createrace
