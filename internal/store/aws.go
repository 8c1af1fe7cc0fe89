package store

import (
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

var _ Store = (*S3Store)(nil)

// S3Store implements Store on top of the AWS SDK for Go v2.
type S3Store struct {
	client s3api.S3API
}

// NewS3Store creates a store backed by the given S3 client.
func NewS3Store(client s3api.S3API) *S3Store {
	return &S3Store{client: client}
}

// ListObjects lists a single page of objects.
func (s *S3Store) ListObjects(ctx context.Context, in *ListInput) (*s3types.ObjectPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(in.Bucket),
	}
	if in.Prefix != "" {
		input.Prefix = aws.String(in.Prefix)
	}
	if in.ContinuationToken != "" {
		input.ContinuationToken = aws.String(in.ContinuationToken)
	}
	if in.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(in.MaxKeys)
	}

	output, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, errors.FromRemote(OpList, in.Bucket, in.Prefix, err)
	}

	page := &s3types.ObjectPage{}
	if output.Contents != nil {
		page.Objects = make([]s3types.Object, 0, len(output.Contents))
		for _, obj := range output.Contents {
			page.Objects = append(page.Objects, s3types.Object{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         aws.ToString(obj.ETag),
			})
		}
	}
	if aws.ToBool(output.IsTruncated) {
		page.NextContinuationToken = aws.ToString(output.NextContinuationToken)
	}

	return page, nil
}

// CopyObject copies source onto bucket/key.
func (s *S3Store) CopyObject(ctx context.Context, bucket, key, source string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		Key:        aws.String(key),
		CopySource: aws.String(escapeLocator(source)),
	})
	return errors.FromRemote(OpCopy, bucket, key, err)
}

// CreateMultipartUpload starts a multipart upload.
func (s *S3Store) CreateMultipartUpload(ctx context.Context, bucket, key string) (string, error) {
	output, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", errors.FromRemote(OpCreateMultipartUpload, bucket, key, err)
	}
	return aws.ToString(output.UploadId), nil
}

// UploadPartCopy copies source into a part of the upload.
func (s *S3Store) UploadPartCopy(
	ctx context.Context,
	bucket, key, uploadID string,
	part int32,
	source string,
) (*s3types.Part, error) {
	output, err := s.client.UploadPartCopy(ctx, &s3.UploadPartCopyInput{
		Bucket:     aws.String(bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(part),
		CopySource: aws.String(escapeLocator(source)),
	})
	if err != nil {
		return nil, errors.FromRemote(OpUploadPartCopy, bucket, key, err)
	}

	result := &s3types.Part{Number: part}
	if output.CopyPartResult != nil {
		result.ETag = aws.ToString(output.CopyPartResult.ETag)
	}
	return result, nil
}

// ListParts lists every part of the upload, following part number markers.
func (s *S3Store) ListParts(ctx context.Context, bucket, key, uploadID string) ([]s3types.Part, error) {
	paginator := s3.NewListPartsPaginator(s.client, &s3.ListPartsInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})

	var parts []s3types.Part
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.FromRemote(OpListParts, bucket, key, err)
		}
		for _, p := range output.Parts {
			parts = append(parts, s3types.Part{
				Number: aws.ToInt32(p.PartNumber),
				ETag:   aws.ToString(p.ETag),
				Size:   aws.ToInt64(p.Size),
			})
		}
	}

	return parts, nil
}

// CompleteMultipartUpload completes the upload with the given parts.
func (s *S3Store) CompleteMultipartUpload(
	ctx context.Context,
	bucket, key, uploadID string,
	parts []s3types.Part,
) error {
	completed := make([]types.CompletedPart, 0, len(parts))
	for _, p := range sortParts(parts) {
		completed = append(completed, types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(p.Number),
		})
	}

	_, err := s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	return errors.FromRemote(OpCompleteMultipartUpload, bucket, key, err)
}

// AbortMultipartUpload aborts the upload.
func (s *S3Store) AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error {
	_, err := s.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	return errors.FromRemote(OpAbortMultipartUpload, bucket, key, err)
}

// DeleteObject deletes bucket/key.
func (s *S3Store) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return errors.FromRemote(OpDelete, bucket, key, err)
}

// escapeLocator URL-encodes the key of a copy locator, segment by segment.
func escapeLocator(source string) string {
	bucket, key := SplitLocator(source)
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return bucket + "/" + strings.Join(segments, "/")
}
