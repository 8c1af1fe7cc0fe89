package store

import (
	"context"
	"sort"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// Operation names used in error context.
const (
	OpList                    = "list"
	OpCopy                    = "copy"
	OpCreateMultipartUpload   = "create-multipart-upload"
	OpUploadPartCopy          = "upload-part-copy"
	OpListParts               = "list-parts"
	OpCompleteMultipartUpload = "complete-multipart-upload"
	OpAbortMultipartUpload    = "abort-multipart-upload"
	OpDelete                  = "delete"
)

// ListInput describes a single listing page request.
type ListInput struct {
	Bucket            string
	Prefix            string
	ContinuationToken string
	MaxKeys           int32
}

// Lister is the read side of a Store.
type Lister interface {
	// ListObjects returns a single page of the listing.
	ListObjects(ctx context.Context, in *ListInput) (*s3types.ObjectPage, error)
}

// Store is the remote object store used by the concat and rename operations.
// Every source argument is a copy locator of the form "bucket/key".
type Store interface {
	Lister

	// CopyObject copies source onto bucket/key.
	CopyObject(ctx context.Context, bucket, key, source string) error

	// CreateMultipartUpload starts an upload for bucket/key and returns its id.
	CreateMultipartUpload(ctx context.Context, bucket, key string) (string, error)

	// UploadPartCopy copies source into the given part of an upload.
	UploadPartCopy(ctx context.Context, bucket, key, uploadID string, part int32, source string) (*s3types.Part, error)

	// ListParts returns every part the store holds for an upload.
	ListParts(ctx context.Context, bucket, key, uploadID string) ([]s3types.Part, error)

	// CompleteMultipartUpload assembles the given parts into the target object.
	CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []s3types.Part) error

	// AbortMultipartUpload discards an upload and its parts.
	AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error

	// DeleteObject removes bucket/key.
	DeleteObject(ctx context.Context, bucket, key string) error
}

// Locator builds the copy source locator for an object.
func Locator(bucket, key string) string {
	return bucket + "/" + key
}

// SplitLocator splits a copy locator at its first separator.
func SplitLocator(source string) (bucket, key string) {
	bucket, key, _ = strings.Cut(strings.TrimPrefix(source, "/"), "/")
	return bucket, key
}

// sortParts returns a copy of parts ordered by part number, as completion requires.
func sortParts(parts []s3types.Part) []s3types.Part {
	sorted := make([]s3types.Part, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})
	return sorted
}
