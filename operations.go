package s3utils

import (
	"context"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/operations/concat"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/operations/rename"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/report"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// Concat merges every object under prefix whose key matches source into the
// target derived from the target template. Sources with the same derived
// target become consecutive parts of one multipart upload, in listing order.
//
// A non-nil error means the run halted before finalization; every upload it
// opened has been aborted. Per-target outcomes of a finished run are reported
// in the result.
func (c *Client) Concat(
	ctx context.Context,
	bucket, prefix, source, target string,
	opts ...s3types.OperationOption,
) (*s3types.ConcatResult, error) {
	if err := validate(bucket, prefix, source, target); err != nil {
		return nil, err
	}
	op := operationConfig(opts)

	return concat.Run(ctx, c.store, concat.Config{
		Bucket:              bucket,
		Prefix:              prefix,
		Source:              source,
		Target:              target,
		DryRun:              op.DryRun,
		Cleanup:             op.Cleanup,
		PageSize:            c.config.PageSize,
		MinPartSize:         c.config.MinPartSize,
		FinalizeConcurrency: c.config.FinalizeConcurrency,
		Logger:              c.logger,
	})
}

// Rename copies every object under prefix whose key matches source to its
// derived key and deletes the original. It stops at the first failure.
func (c *Client) Rename(
	ctx context.Context,
	bucket, prefix, source, target string,
	opts ...s3types.OperationOption,
) (*s3types.RenameResult, error) {
	if err := validate(bucket, prefix, source, target); err != nil {
		return nil, err
	}
	op := operationConfig(opts)

	return rename.Run(ctx, c.store, rename.Config{
		Bucket:   bucket,
		Prefix:   prefix,
		Source:   source,
		Target:   target,
		DryRun:   op.DryRun,
		PageSize: c.config.PageSize,
		Logger:   c.logger,
	})
}

// Report walks everything under prefix and writes summary statistics to w.
func (c *Client) Report(ctx context.Context, bucket, prefix string, w io.Writer) error {
	if err := validation.ValidateLegacyBucketName(bucket); err != nil {
		return err
	}
	if err := validation.ValidatePrefix(prefix); err != nil {
		return err
	}

	r, err := report.Generate(ctx, c.store, report.Config{
		Bucket:   bucket,
		Prefix:   prefix,
		PageSize: c.config.PageSize,
	})
	if err != nil {
		return err
	}
	if err := r.Print(w); err != nil {
		return errors.NewError("report", err).WithBucket(bucket)
	}
	return nil
}

func validate(bucket, prefix, source, target string) error {
	if err := validation.ValidateLegacyBucketName(bucket); err != nil {
		return err
	}
	if err := validation.ValidatePrefix(prefix); err != nil {
		return err
	}
	return validation.ValidatePatterns(source, target)
}
