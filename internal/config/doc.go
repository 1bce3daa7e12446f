// Package config loads and validates application configuration from
// environment variables, once at startup.
package config
