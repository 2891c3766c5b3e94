// Package config loads bridge settings from TOML, YAML or JSON files.
package config
