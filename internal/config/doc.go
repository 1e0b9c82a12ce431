// Package config loads leviosa's TOML configuration.
//
// Values come from built-in defaults, then the TOML file, then environment
// variables (optionally seeded from a .env file). Command-line flags are
// applied on top by the cli package.
package config
