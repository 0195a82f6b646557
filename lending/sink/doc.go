// Package sink delivers the side effects of committed lending operations: audit records for
// external audit stores and notifications for members.
//
// Delivery is best-effort and asynchronous. The Dispatcher never blocks or fails the operation
// that produced the events; a sink failure is retried a few times and then only logged.
package sink
