// Package config loads docshell configuration.
//
// Values are layered in a fixed order: built-in defaults, then a config
// file (TOML or YAML, chosen by extension), then DOCSHELL_* environment
// variables. The result is validated before use.
//
// Example TOML:
//
//	[logging]
//	level = "debug"
//
//	[session]
//	max_file_size = 10485760
//	confirm_close = "cancel"
//
//	[[backends]]
//	name = "json"
//	extensions = [".json"]
//	format = true
//
// Environment variables follow the section layout, for example
// DOCSHELL_LOGGING_LEVEL or DOCSHELL_SESSION_MAX_FILE_SIZE. Backend rules
// can only be set in the file.
package config
