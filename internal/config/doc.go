// Package config loads, normalizes, and validates vidlingo configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LLM_API_KEY and NTFY_TOPIC, including values from a local .env file. The
// Config type is passed explicitly to the pipeline, worker pool, and HTTP
// server; no package keeps its own global settings.
package config
