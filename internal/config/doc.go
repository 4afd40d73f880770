// Package config loads application settings from an optional config.yaml,
// an optional .env file and THINKFORGE_-prefixed environment variables, and
// validates them before any component is constructed.
package config
