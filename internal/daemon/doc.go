// Package daemon hosts the long-running vidlingod process. It enforces a
// single instance through an flock lock under the state directory, starts
// the workflow manager, and serves the HTTP front end.
//
// The HTTP server exposes the upload page at /, the multipart upload
// endpoint, attachment downloads scoped to the processed directory, and a
// JSON API under /api for polling, retrying, and removing jobs. Job
// snapshots are also streamed over a websocket at /api/jobs/{id}/events.
// Routes under /api require a bearer token when paths.api_token is set.
package daemon
