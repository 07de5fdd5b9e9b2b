// Package checkoutguest implements the Check Out Guest use case, it ends the stay of a checked in guest
// and frees the container.
package checkoutguest
