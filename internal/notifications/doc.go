// Package notifications delivers job lifecycle events via pluggable notifiers.
//
// Two transports are built in: ntfy push notifications over HTTP and a
// JSON event published to a durable AMQP queue for downstream consumers.
// NewService fans out to every configured transport and degrades to a no-op
// when neither is set. Workflow code depends only on the Service interface.
package notifications
