// Package session holds the view state of the triage desk and the operations
// that mutate it.
//
// Every user action is split in two. The start method runs on the caller's
// goroutine: it validates input, claims the action's busy flag and applies the
// optimistic state change (for a chat send, the user message and a typing
// placeholder). It then returns a Task that performs the backend request,
// writes the outcome into the action's own result and error cells and
// releases the flag. The UI runs Tasks off the event loop and re-renders from
// Snapshot when they return.
//
// Busy flags are independent, except that the monitor log read and the
// monitor cycle trigger share one flag and one error cell.
package session
