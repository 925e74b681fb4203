// Package file loads and persists the TOML configuration file.
package file
