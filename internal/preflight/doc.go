// Package preflight provides readiness checks for the binaries, directories,
// and remote services vidlingo depends on.
//
// The daemon runs RunAll at start-up and logs every failure; `vidlingo
// status` and GET /api/status render the same results. Checks never modify
// state.
package preflight
