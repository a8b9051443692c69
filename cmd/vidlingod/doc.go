// Command vidlingod runs the translation daemon: the HTTP upload and
// download surface, the job queue, and the worker pool that drives the
// pipeline for each queued video.
//
// It stops on SIGINT or SIGTERM. Jobs interrupted mid-stage are reset to
// pending on the next start.
package main
