// Package llm provides an OpenAI-compatible chat client used to rewrite
// extracted documents into narration scripts.
//
// # Configuration
//
// Requires api_key and model; base_url, timeout_seconds and system_prompt are
// optional. When system_prompt is empty DefaultRewritePrompt is used.
//
// # Entry Points
//
// NewClient: construct client from Config (see ConfigFromSettings).
// Client.Rewrite: turn document text into a normalized narration script.
// Client.Complete: send system/user prompts, receive the model's text.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and
// network timeouts with exponential backoff (base 1s, max 10s, up to 5
// attempts by default). Retry-After headers are honoured up to the max delay.
// Context cancellation aborts retries immediately.
package llm
