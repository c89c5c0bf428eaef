// Package config loads and validates application settings from the
// environment (FOLIO_ prefix) and an optional YAML file, using viper for
// loading and validator for validation.
package config
