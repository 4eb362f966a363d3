// Package main hosts the reelforge CLI entrypoint and command graph.
//
// The Cobra-based command tree loads reel scripts, creates jobs in the
// configured store and runs the asset pipeline in-process. It also covers job
// inspection, preflight status and configuration scaffolding. Configuration
// resolution and logging setup live here so subcommands stay declarative;
// pipeline behavior belongs in the internal packages.
package main
