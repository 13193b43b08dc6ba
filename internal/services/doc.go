// Package services defines shared utilities consumed by the render pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that let callers tell
//     recoverable degradations apart from fatal resource and encoding
//     failures.
//
// Use these helpers when wiring new pipeline code so error classification and
// observability stay uniform.
package services
