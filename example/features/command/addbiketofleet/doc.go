// Package addbiketofleet implements the Add Bike to Fleet use case.
package addbiketofleet
