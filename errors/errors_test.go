package errors

import (
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bucket and key",
			err:  NewObjectError("delete", "bucket", "key", base),
			want: "s3.delete bucket/key: boom",
		},
		{
			name: "bucket only",
			err:  NewError("list", base).WithBucket("bucket"),
			want: "s3.list bucket bucket: boom",
		},
		{
			name: "key only",
			err:  NewError("copy", base).WithKey("key"),
			want: "s3.copy object key: boom",
		},
		{
			name: "no context",
			err:  NewError("concat", base),
			want: "s3.concat: boom",
		},
		{
			name: "with message",
			err:  NewError("concat", base).WithMessage("construction failed"),
			want: "s3.concat: construction failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, base)
		})
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "api error message",
			err: &smithy.GenericAPIError{
				Code:    "NoSuchKey",
				Message: "The specified key does not exist.",
			},
			want: "The specified key does not exist.",
		},
		{
			name: "api error without message falls back to code",
			err:  &smithy.GenericAPIError{Code: "NoSuchUpload"},
			want: "NoSuchUpload",
		},
		{
			name: "raw xml fault",
			err: errors.New(`unexpected response: <?xml version="1.0" encoding="UTF-8"?>` +
				`<Error><Code>InvalidPart</Code><Message>One or more of the specified parts could not be found.</Message>` +
				`<RequestId>abc</RequestId></Error>`),
			want: "One or more of the specified parts could not be found.",
		},
		{
			name: "wrapped xml fault",
			err: errors.New(`<ErrorResponse><Error><Code>SlowDown</Code>` +
				`<Message>Please reduce your request rate.</Message></Error></ErrorResponse>`),
			want: "Please reduce your request rate.",
		},
		{
			name: "raw text",
			err:  errors.New("connection reset by peer"),
			want: "connection reset by peer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestFromRemote(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, FromRemote("delete", "bucket", "key", nil))
	})

	t.Run("wraps with context and normalized message", func(t *testing.T) {
		apiErr := &smithy.GenericAPIError{Code: "NoSuchKey", Message: "missing"}
		err := FromRemote("delete", "bucket", "key", apiErr)
		require.Error(t, err)

		assert.Equal(t, "s3.delete bucket/key: missing", err.Error())
		assert.Equal(t, "missing", Message(err))
		assert.True(t, IsRemote(err))
		assert.True(t, IsObjectNotFound(err))
		assert.False(t, IsBucketNotFound(err))

		var target *smithy.GenericAPIError
		assert.True(t, errors.As(err, &target))

		var typed *Error
		require.True(t, errors.As(err, &typed))
		assert.Equal(t, "delete", typed.Op)
	})
}

func TestRemoteError_Is(t *testing.T) {
	tests := []struct {
		code   string
		target error
	}{
		{code: "NoSuchKey", target: ErrObjectNotFound},
		{code: "NoSuchBucket", target: ErrBucketNotFound},
		{code: "NoSuchUpload", target: ErrUploadNotFound},
		{code: "AccessDenied", target: ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := FromRemote("op", "b", "k", &smithy.GenericAPIError{Code: tt.code, Message: "x"})
			assert.ErrorIs(t, err, tt.target)
			assert.ErrorIs(t, err, ErrRemote)
		})
	}
}

func TestIsInvalidInput(t *testing.T) {
	assert.True(t, IsInvalidInput(NewError("concat", ErrInvalidPattern)))
	assert.True(t, IsInvalidInput(NewError("concat", ErrInvalidBucketName)))
	assert.False(t, IsInvalidInput(NewError("concat", ErrObjectTooSmall)))
}
