// Package config loads application settings from an optional YAML file and
// RECALL_ prefixed environment variables and validates them.
package config
