// Package publish uploads finished videos to S3-compatible object storage and
// produces presigned download links.
package publish
