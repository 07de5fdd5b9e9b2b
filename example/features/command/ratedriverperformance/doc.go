// Package ratedriverperformance implements the Rate Driver Performance use case.
//
// Each user rates each driver once per race. The decision is keyed on all three ids, its stream is the
// events tagged with the driver, the race, and the user at the same time.
package ratedriverperformance
