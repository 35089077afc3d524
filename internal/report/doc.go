// Package report provides the observers a suite binary attaches to a run:
// console output, a JSON report, Prometheus metrics written to a textfile
// and the SQLite journal.
package report
