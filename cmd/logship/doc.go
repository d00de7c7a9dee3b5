// Package main hosts the logship CLI entrypoint and command graph.
//
// The Cobra-based command tree wires terminal invocations into the shipping
// pipeline, the dry-run listing view, and configuration scaffolding. It
// centralizes configuration resolution and structured logging setup so the
// commands stay declarative; the conversion logic itself lives in the
// internal packages.
package main
