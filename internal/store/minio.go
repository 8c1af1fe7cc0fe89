package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

const minioMaxParts = 1000

var _ Store = (*MinioStore)(nil)

// MinioConfig holds the connection settings for a MinIO backed store.
type MinioConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// MinioStore implements Store on top of the MinIO Go client.
type MinioStore struct {
	core *minio.Core
}

// NewMinioStore creates a store backed by an existing MinIO core client.
func NewMinioStore(core *minio.Core) *MinioStore {
	return &MinioStore{core: core}
}

// NewMinioCore creates a MinIO core client from cfg. The endpoint may carry
// an http or https scheme, which then overrides UseSSL.
func NewMinioCore(cfg MinioConfig) (*minio.Core, error) {
	host, secure, err := parseEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	core, err := minio.NewCore(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.NewError("client initialization", err)
	}
	return core, nil
}

func parseEndpoint(endpoint string, useSSL bool) (string, bool, error) {
	if endpoint == "" {
		return "", false, errors.NewError("client initialization",
			fmt.Errorf("%w: minio backend requires an endpoint", errors.ErrInvalidInput))
	}
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), useSSL, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, errors.NewError("client initialization",
			fmt.Errorf("%w: %v", errors.ErrInvalidInput, err))
	}
	return u.Host, u.Scheme == "https", nil
}

// ListObjects lists a single page of objects.
func (m *MinioStore) ListObjects(_ context.Context, in *ListInput) (*s3types.ObjectPage, error) {
	result, err := m.core.ListObjectsV2(in.Bucket, in.Prefix, "", in.ContinuationToken, "", int(in.MaxKeys))
	if err != nil {
		return nil, minioError(OpList, in.Bucket, in.Prefix, err)
	}

	page := &s3types.ObjectPage{}
	if result.Contents != nil {
		page.Objects = make([]s3types.Object, 0, len(result.Contents))
		for _, obj := range result.Contents {
			page.Objects = append(page.Objects, s3types.Object{
				Key:          obj.Key,
				Size:         obj.Size,
				LastModified: obj.LastModified,
				ETag:         obj.ETag,
			})
		}
	}
	if result.IsTruncated {
		page.NextContinuationToken = result.NextContinuationToken
	}

	return page, nil
}

// CopyObject copies source onto bucket/key.
func (m *MinioStore) CopyObject(ctx context.Context, bucket, key, source string) error {
	srcBucket, srcKey := SplitLocator(source)
	_, err := m.core.Client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: bucket, Object: key},
		minio.CopySrcOptions{Bucket: srcBucket, Object: srcKey},
	)
	return minioError(OpCopy, bucket, key, err)
}

// CreateMultipartUpload starts a multipart upload.
func (m *MinioStore) CreateMultipartUpload(ctx context.Context, bucket, key string) (string, error) {
	uploadID, err := m.core.NewMultipartUpload(ctx, bucket, key, minio.PutObjectOptions{})
	if err != nil {
		return "", minioError(OpCreateMultipartUpload, bucket, key, err)
	}
	return uploadID, nil
}

// UploadPartCopy copies the whole source object into a part of the upload.
func (m *MinioStore) UploadPartCopy(
	ctx context.Context,
	bucket, key, uploadID string,
	part int32,
	source string,
) (*s3types.Part, error) {
	srcBucket, srcKey := SplitLocator(source)
	completed, err := m.core.CopyObjectPart(ctx, srcBucket, srcKey, bucket, key, uploadID, int(part), 0, -1, nil)
	if err != nil {
		return nil, minioError(OpUploadPartCopy, bucket, key, err)
	}
	return &s3types.Part{Number: part, ETag: completed.ETag}, nil
}

// ListParts lists every part of the upload, following part number markers.
func (m *MinioStore) ListParts(ctx context.Context, bucket, key, uploadID string) ([]s3types.Part, error) {
	var parts []s3types.Part
	marker := 0
	for {
		result, err := m.core.ListObjectParts(ctx, bucket, key, uploadID, marker, minioMaxParts)
		if err != nil {
			return nil, minioError(OpListParts, bucket, key, err)
		}
		for _, p := range result.ObjectParts {
			parts = append(parts, s3types.Part{
				Number: int32(p.PartNumber),
				ETag:   p.ETag,
				Size:   p.Size,
			})
		}
		if !result.IsTruncated || result.NextPartNumberMarker <= marker {
			return parts, nil
		}
		marker = result.NextPartNumberMarker
	}
}

// CompleteMultipartUpload completes the upload with the given parts.
func (m *MinioStore) CompleteMultipartUpload(
	ctx context.Context,
	bucket, key, uploadID string,
	parts []s3types.Part,
) error {
	completed := make([]minio.CompletePart, 0, len(parts))
	for _, p := range sortParts(parts) {
		completed = append(completed, minio.CompletePart{
			PartNumber: int(p.Number),
			ETag:       p.ETag,
		})
	}

	_, err := m.core.CompleteMultipartUpload(ctx, bucket, key, uploadID, completed, minio.PutObjectOptions{})
	return minioError(OpCompleteMultipartUpload, bucket, key, err)
}

// AbortMultipartUpload aborts the upload.
func (m *MinioStore) AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error {
	err := m.core.AbortMultipartUpload(ctx, bucket, key, uploadID)
	return minioError(OpAbortMultipartUpload, bucket, key, err)
}

// DeleteObject deletes bucket/key.
func (m *MinioStore) DeleteObject(ctx context.Context, bucket, key string) error {
	err := m.core.Client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
	return minioError(OpDelete, bucket, key, err)
}

// minioError converts a MinIO error response into a smithy API error so both
// backends normalize the same way.
func minioError(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}
	if resp := minio.ToErrorResponse(err); resp.Code != "" {
		err = &smithy.GenericAPIError{
			Code:    resp.Code,
			Message: resp.Message,
		}
	}
	return errors.FromRemote(op, bucket, key, err)
}
