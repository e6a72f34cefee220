// Package config loads recipeguard configuration from YAML.
//
// Load reads a file, expands ${VAR} references strictly (a missing variable
// is an error, $$ is a literal dollar), applies RECIPEGUARD_* environment
// overrides, fills defaults and validates the result. A missing file yields
// the defaults.
//
// Secret values such as the session signing key may be written as
// secretref:<provider>:<ref>. The env provider reads an environment
// variable and the file provider reads a file, trimming trailing newlines.
package config
