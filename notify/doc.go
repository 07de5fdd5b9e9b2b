// Package notify delivers appended events to subscribers outside the write path.
//
// A Tailer polls an EventLog from a checkpoint and hands every new event to a Subscriber in position order.
// Delivery is at-least-once: the checkpoint moves only after the subscriber returned without error,
// so a subscriber must tolerate redelivery.
package notify
