// Package config handles configuration loading for toolhouse-hub.
//
// # Overview
//
// Configuration is read from a TOML file with environment variable
// expansion. Every setting has a default, so a missing file is not an error.
//
// # Configuration File
//
// Locations (first match wins):
//
//  1. Path from the TOOLHOUSE_HUB_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/toolhouse-hub/config.toml
//  3. ~/.config/toolhouse-hub/config.toml
//
// # Environment Variable Expansion
//
// Values can reference environment variables:
//
//	[http]
//	api_key = "${TOOLHOUSE_API_KEY}"
//
// Unset variables expand to the empty string.
//
// # Configuration Sections
//
//	[catalog]
//	path = ""                      # YAML agent catalog; empty uses the built-in one
//
//	[storage]
//	backend = "file"               # file, sqlite, sqlite3, memory
//	path = "~/.local/share/toolhouse-hub"
//	key = "toolhouse-chat-history"
//	max_entries = 50
//
//	[http]
//	timeout = "2m"                 # per request, "0" or empty for none
//	api_key = ""
//	user_agent = "toolhouse-hub"
//
//	[logging]
//	level = "warn"                 # debug, info, warn, error
//	format = "text"                # text, json
//	file = ""                      # rotate logs into this file instead of stderr
//	max_size_mb = 10
//	max_age_days = 28
//	max_backups = 3
//
//	[ui]
//	color = "auto"                 # auto, always, never
//	markdown = true
//
// For the sqlite backends path is the database file; for file it is a
// directory.
package config
