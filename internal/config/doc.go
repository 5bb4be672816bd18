// Package config loads generation options from a YAML file and applies
// defaults for anything left unset.
package config
