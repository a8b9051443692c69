// Package httpretry holds the retry policy shared by the HTTP service
// clients: retry on 408/429/5xx and network timeouts with capped exponential
// backoff, honouring Retry-After, and never retrying after context
// cancellation.
package httpretry
