// Package llm provides an OpenAI-compatible chat client used as an
// alternative translation backend.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive JSON response.
// Client.Translate: translate one subtitle segment, decoding {"translation": ...}.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// Requests go through httpretry: HTTP 408/429/5xx, network timeouts, and
// empty model responses are retried with exponential backoff (base 1s, max
// 10s, up to 5 attempts by default). Context cancellation aborts retries
// immediately.
package llm
