// Package errors provides error types and handling for s3-utils operations.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
	smithyxml "github.com/aws/smithy-go/encoding/xml"
)

// Error represents an S3 operation error with context about the operation that failed.
// It wraps the underlying store error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "list", "upload-part-copy", "delete")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Err is the underlying error from the store or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for common failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("s3: bucket not found")

	// ErrUploadNotFound indicates that the multipart upload does not exist
	ErrUploadNotFound = errors.New("s3: upload not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3: invalid object key")

	// ErrInvalidPattern indicates that a source pattern failed to compile
	ErrInvalidPattern = errors.New("s3: invalid pattern")

	// ErrObjectTooSmall indicates that a matched object is below the minimum part size
	ErrObjectTooSmall = errors.New("s3: object too small to be a part")

	// ErrRemote marks any failure reported by the remote store
	ErrRemote = errors.New("s3: remote error")
)

// RemoteError is the normalized form of every failure reported by a store.
// Message holds the human readable text extracted from the remote fault.
type RemoteError struct {
	Code    string
	Message string
	Err     error
}

// Error returns the normalized message.
func (e *RemoteError) Error() string {
	return e.Message
}

// Unwrap returns the original store error.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is maps well known remote codes onto the package sentinels.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemote:
		return true
	case ErrObjectNotFound:
		return e.Code == "NoSuchKey" || e.Code == "NotFound"
	case ErrBucketNotFound:
		return e.Code == "NoSuchBucket"
	case ErrUploadNotFound:
		return e.Code == "NoSuchUpload"
	case ErrAccessDenied:
		return e.Code == "AccessDenied" || e.Code == "Forbidden"
	}
	return false
}

// FromRemote wraps a store failure into an *Error whose message is the
// normalized remote text. A nil err returns nil.
func FromRemote(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}
	return NewObjectError(op, bucket, key, normalize(err))
}

// Message returns the human readable message carried by err. Remote faults
// resolve to their embedded message, anything else to its raw text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	return normalize(err).Message
}

func normalize(err error) *RemoteError {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.ErrorMessage()
		if msg == "" {
			msg = apiErr.ErrorCode()
		}
		if msg != "" {
			return &RemoteError{Code: apiErr.ErrorCode(), Message: msg, Err: err}
		}
	}

	raw := err.Error()
	if code, msg, ok := faultMessage(raw); ok {
		return &RemoteError{Code: code, Message: msg, Err: err}
	}
	return &RemoteError{Message: raw, Err: err}
}

// faultMessage extracts <Code> and <Message> from an XML fault payload
// embedded anywhere in raw.
func faultMessage(raw string) (string, string, bool) {
	idx := strings.Index(raw, "<")
	if idx < 0 || !strings.Contains(raw, "<Message>") {
		return "", "", false
	}
	payload := raw[idx:]

	for _, unwrapped := range []bool{true, false} {
		c, err := smithyxml.GetErrorResponseComponents(strings.NewReader(payload), unwrapped)
		if err == nil && c.Message != "" {
			return c.Code, c.Message, true
		}
	}
	return "", "", false
}

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidInput checks if an error indicates invalid input.
// Invalid bucket names, keys and patterns all count as invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidBucketName) ||
		errors.Is(err, ErrInvalidObjectKey) ||
		errors.Is(err, ErrInvalidPattern)
}

// IsRemote checks if an error was reported by the remote store.
func IsRemote(err error) bool {
	return errors.Is(err, ErrRemote)
}
