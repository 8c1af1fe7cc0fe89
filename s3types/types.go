// Package s3types defines the public types shared by the s3-utils client,
// its operations and its configuration options.
package s3types

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog"
)

// MinPartSize is the smallest object, in bytes, that may become a multipart part.
const MinPartSize int64 = 5_000_000

// DefaultPageSize is the number of keys requested per listing page.
const DefaultPageSize int32 = 1000

// Backend selects the client library used to talk to the object store.
type Backend string

const (
	// BackendAWS uses the AWS SDK for Go v2.
	BackendAWS Backend = "aws"

	// BackendMinio uses the MinIO Go client.
	BackendMinio Backend = "minio"
)

// Object represents an object in an S3 listing.
type Object struct {
	// Key is the object key
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the entity tag of the object
	ETag string
}

// ObjectPage is one page of a bucket listing.
type ObjectPage struct {
	// Objects holds the page entries. A nil slice means the response
	// carried no contents at all.
	Objects []Object

	// NextContinuationToken is empty on the final page
	NextContinuationToken string
}

// Part is one part of a multipart upload.
type Part struct {
	// Number is the part number, starting at 1
	Number int32

	// ETag is the entity tag the store assigned to the part
	ETag string

	// Size is the part size in bytes (when reported)
	Size int64
}

// Mapping pairs a source key with its derived target key.
type Mapping struct {
	Source string
	Target string
}

// TargetStatus is the outcome of finalizing one target upload.
type TargetStatus string

const (
	// TargetCompleted means the multipart upload was completed.
	TargetCompleted TargetStatus = "completed"

	// TargetAborted means the multipart upload was aborted.
	TargetAborted TargetStatus = "aborted"
)

// TargetResult describes a single target upload of a concat run.
type TargetResult struct {
	// Key is the target object key
	Key string

	// UploadID is the multipart upload identifier
	UploadID string

	// Sources are the source keys copied into the upload, in part order
	Sources []string

	// Parts is the number of parts submitted on completion
	Parts int

	// Status is the final state of the upload
	Status TargetStatus

	// Err is the failure that caused an abort, if any
	Err error
}

// ConcatResult contains the result of a concat operation.
type ConcatResult struct {
	// Mappings lists every source/target pair that matched, in walk order
	Mappings []Mapping

	// Targets holds one entry per target upload, in creation order
	Targets []TargetResult

	// Deleted lists the source keys removed during cleanup
	Deleted []string

	// FailedDeletes lists the source keys that could not be removed
	FailedDeletes []string

	// DryRun reports whether the run issued no mutating calls
	DryRun bool

	// Duration is how long the operation took
	Duration time.Duration
}

// RenameResult contains the result of a rename operation.
type RenameResult struct {
	// Renamed lists every source/target pair processed, in walk order
	Renamed []Mapping

	// DryRun reports whether the run issued no mutating calls
	DryRun bool

	// Duration is how long the operation took
	Duration time.Duration
}

// Configuration types for functional options

// ClientConfig holds configuration for the s3-utils client.
type ClientConfig struct {
	Backend             Backend
	Region              string
	Endpoint            string
	AccessKey           string
	SecretKey           string
	UseSSL              bool
	ForcePathStyle      bool
	Timeout             time.Duration
	CustomAWSConfig     *aws.Config
	Logger              zerolog.Logger
	FinalizeConcurrency int
	PageSize            int32
	MinPartSize         int64
}

// OperationConfig holds configuration for concat and rename operations.
type OperationConfig struct {
	DryRun  bool
	Cleanup bool
}

type (
	// Option is a functional option for configuring the s3-utils client.
	Option func(*ClientConfig)
	// OperationOption is a functional option for configuring concat and rename runs.
	OperationOption func(*OperationConfig)
)
