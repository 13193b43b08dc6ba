// Package logs reads the reelforge log file for `reelforge logs`.
//
// Last returns the trailing lines with bounded memory. Follow polls from an
// offset and emits complete lines until its context ends, restarting from the
// top when the file is truncated.
package logs
