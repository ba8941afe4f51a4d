// Package logtail reads the tail of the client log and renders zerolog JSON
// lines for the log overlay.
//
// # Reading
//
// Read keeps a ring buffer of maxLines entries and makes one pass over the
// file, so memory stays O(maxLines) regardless of file size. A missing file is
// not an error; the overlay shows an empty log instead.
//
// # Formatting
//
// Parse turns a JSON line such as
//
//	{"level":"warn","service":"triagedesk","error":"timeout","time":1700000000,"message":"monitor log load failed"}
//
// into
//
//	22:13:20 WARN monitor log load failed error=timeout
//
// Time is shown in local time. Extra fields are sorted by key, and string
// values with spaces are quoted. The service field is dropped. Lines that are
// not JSON objects pass through unchanged.
//
// Failures of background loads never reach the UI's error slots; this view is
// where they can be inspected.
package logtail
