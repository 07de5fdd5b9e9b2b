// Package removedriver implements the Remove Driver use case.
package removedriver
