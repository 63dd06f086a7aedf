// Package config loads gapidemo settings.
//
// Values are resolved in this order, later sources winning: built-in
// defaults, the TOML file (~/.config/gapidemo/config.toml by default),
// environment variables (optionally seeded from a .env file), and finally
// command-line flags applied by the caller.
package config
