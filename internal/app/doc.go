// Package app is the composition root of triagedesk.
//
// # Startup
//
//	Run()
//	  ├─> config.Load()       TOML file, .env, TRIAGEDESK_* variables
//	  ├─> logging.Init()      zerolog JSON lines to the log file
//	  ├─> triage.NewClient()  HTTP client for the backend
//	  ├─> prefs.Load()        theme; failures are logged, defaults used
//	  ├─> session.New()       per-run user id and greeting
//	  └─> ui.Run()            Bubble Tea program (blocks)
//
// The controller's startup fetches (status probe and config) are handed to the
// UI and run as its first commands, so the window appears immediately and the
// mode pill updates when the probe returns. There is no background polling;
// every later request is triggered by a key press or a panel change.
//
// # Check mode
//
// RunCheck skips the UI. It runs the status, config, monitor-log and
// image-health probes concurrently, each bounded by a five second timeout, and
// writes one line per probe:
//
//	backend  http://127.0.0.1:5000
//	status   ok     mode=LOCAL
//	config   ok     console=-
//	monitor  ok     records=12
//	imaging  error  image service offline
//
// Only the status probe decides the result; the other endpoints back optional
// panels.
//
// # Errors
//
// Configuration, logging and client construction failures are returned from
// Run and RunCheck. Everything after startup is handled inside the session
// controller and never ends the program.
package app
