// Package config loads and validates the YAML configuration file that
// describes a store: its name, its storage backend and the defaults for
// logging and solving.
package config
