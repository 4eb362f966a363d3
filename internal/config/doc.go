// Package config loads, normalizes, and validates reelforge configuration.
//
// Configuration comes from a TOML file (~/.config/reelforge/config.toml or
// ./reelforge.toml) layered over Default(). A .env file in the working
// directory is loaded first so vendor secrets can stay out of the TOML file,
// and empty secrets fall back to the matching environment variables.
//
// Load returns the parsed config together with the resolved path and whether
// the file existed, mirroring how the CLI reports configuration status.
package config
