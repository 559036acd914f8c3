// Package main hosts the reelsense CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the structured logger, opens the run history database when enabled, and
// hands work to the internal packages: analysis for full runs, concepts for
// regenerating reel ideas from a saved analysis, history for past runs, and
// preflight for environment checks.
//
// Keep this package lean: new behaviour belongs in internal packages first,
// then gets surfaced here as a command or flag.
package main
