// Package preflight provides readiness checks for the binaries, directories,
// fonts and services reelforge depends on.
//
// The CLI "reelforge status" command runs RunAll and prints each Result;
// "compose" and "generate" call CheckSystemDeps first and refuse to start
// when a required binary is missing.
//
// Each service check is gated by its config section -- unconfigured features
// report as disabled instead of failing.
package preflight
