// Package verifyemail implements the Verify Email use case.
package verifyemail
