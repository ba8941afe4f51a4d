// Package ui implements the triagedesk terminal interface with Bubble Tea.
//
// # Architecture
//
// Model is the root Bubble Tea model. It owns the widgets (textareas, text
// inputs, viewports and a spinner) and a copy of the session state taken with
// session.Controller.Snapshot. It never mutates that state itself: every user
// action calls a Controller operation, which records the optimistic state and
// returns a session.Task. The task runs as a tea.Cmd and ends with a
// sessionMsg; Update then takes a fresh snapshot, so results arrive through
// Update like any other message whatever order the tasks finish in.
//
// # Panels
//
//   - Chat: transcript, suggestion chips and the message input
//   - Extract: clinical notes input and the structured extraction
//   - Monitor: robot log records, the cycle trigger and the vitals form
//   - Imaging: image-analysis service health
//
// Switching panels goes through Controller.SetPanel, which may schedule the
// quiet loads for Monitor and Imaging.
//
// # Overlays
//
// F5 (or ? outside text inputs) opens help and the about text. Ctrl+L opens
// the client log, read from the zerolog file with logtail.
//
// # Files
//
//   - app.go: Model, Update, View, messages and commands, Run
//   - header.go: header and command bar
//   - layout.go: sizes and the titled box
//   - chat.go, extract.go, monitor.go, imaging.go: panels
//   - logs.go: client log overlay
//   - help.go: help overlay
//   - theme.go, keys.go, style_helpers.go, format.go: shared helpers
package ui
