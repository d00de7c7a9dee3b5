// Package config loads and validates the optional logship configuration
// file.
//
// Configuration is TOML with three sections: [fields] for static fields
// merged into every record (command-line pairs override them), [logging] for
// diagnostic format and level, and [run] for run identity stamping and the
// concurrent-run lock. A missing file yields defaults; an invalid one fails
// before any input is processed.
package config
