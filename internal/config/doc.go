// Package config loads triagedesk settings.
//
// # Resolution Order
//
//  1. Built-in defaults
//  2. The TOML file at the given path, or ~/.config/triagedesk/config.toml
//  3. A .env file in the working directory (godotenv), which only sets
//     variables not already present in the environment
//  4. TRIAGEDESK_API_URL, TRIAGEDESK_LOG_LEVEL and TRIAGEDESK_LOG_FILE
//
// A missing config file is not an error. Empty strings in the file fall back to
// defaults, except greeting: an explicit empty greeting disables it.
//
// # TOML Format
//
//	api_url = "127.0.0.1:5000"
//	log_file = "~/.local/state/triagedesk/triagedesk.log"
//	log_level = "info"
//	request_timeout = "30s"
//	console_fallback_url = "https://cloud.ibm.com/watson/assistant"
//	greeting = "Olá. Como posso ajudar?"
//
// request_timeout is a Go duration; zero or absent leaves requests unbounded.
// Tilde expansion applies to the config path and log_file.
//
// # Error Handling
//
// Load fails on unreadable files, malformed .env files, invalid TOML and
// invalid durations. Parse failures mention "parse config".
package config
