// Package storage uploads finished job artifacts to an S3-compatible bucket
// using minio-go. Uploads are optional and driven by the [storage] config
// section.
package storage
