// Package ship implements the log shipping pipeline: input selection,
// file and archive decoding, and per-line JSON emission.
//
// The pipeline is deliberately single-threaded and single-pass. A Shipper
// drives one of four input modes (glob, directory walk, archive, stdin)
// through a common stream encoder that writes one JSON record per input line
// to stdout. Failures are contained at the smallest enclosing unit: a bad
// line aborts its stream, a bad stream abandons its path, a bad path never
// aborts the run. Diagnostics go to the structured logger on stderr so the
// record stream stays clean for the downstream ingester.
package ship
