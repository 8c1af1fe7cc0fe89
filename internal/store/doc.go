// Package store abstracts the remote object store behind the eight calls the
// s3-utils operations need: listing, copying, the multipart upload lifecycle
// and deletion.
//
// Two implementations are provided. S3Store drives the AWS SDK for Go v2 and
// MinioStore drives the MinIO Go client. Both normalize every failure through
// errors.FromRemote so callers see a single error representation whose message
// is the text embedded in the remote fault.
package store
