// Package main hosts the reelforge CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into renders
// (compose), end-to-end document narration (generate), caption timeline
// previews, media probing, run history, log viewing, ntfy tests and
// environment checks. It centralizes configuration resolution, .env loading
// and logger construction so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
