// Package createdriver implements the Create Driver use case.
//
// A driver can be created when it was never created or was removed before.
// Creating an active driver again is a business rejection, not an error.
package createdriver
