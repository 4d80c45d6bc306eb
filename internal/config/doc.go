// Package config loads and validates the hemascan TOML configuration.
//
// Configuration is resolved from an explicit path, ~/.config/hemascan/config.toml,
// or hemascan.toml in the working directory, in that order. All path fields are
// expanded and normalized on load so downstream packages never deal with "~" or
// relative paths. Defaults are defined in defaults.go and mirrored in the
// embedded sample_config.toml used by "hemascan config init".
package config
