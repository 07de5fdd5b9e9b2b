// Package checkinguest implements the Check In Guest use case. A guest holds one container at a time
// and a container sleeps one guest at a time.
package checkinguest
