// Package record holds the field-set template merged into every emitted
// log record.
//
// A template is an ordered set of static key/value fields built once at
// startup from configuration and command-line arguments. Per emitted line the
// template is serialized as a single JSON object with a trailing `message`
// field carrying the raw line. Key order is insertion order, which keeps the
// output stable for downstream ingesters that diff or sample the stream.
package record
