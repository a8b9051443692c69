// Command vidlingo is the desktop front end. It translates a single video
// synchronously, manages the daemon's job queue, and inspects configuration
// and dependency health.
//
// Queue commands open the SQLite store directly, so they work whether or not
// vidlingod is running.
package main
