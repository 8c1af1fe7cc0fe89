package concat

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// Finalizer completes target uploads once construction has succeeded.
type Finalizer struct {
	store       store.Store
	bucket      string
	concurrency int
	logger      zerolog.Logger
}

// NewFinalizer creates a finalizer. A concurrency below one finalizes
// sequentially.
func NewFinalizer(st store.Store, bucket string, concurrency int, logger zerolog.Logger) *Finalizer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Finalizer{
		store:       st,
		bucket:      bucket,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Finalize completes every session independently and returns one result
// per session, in the order given. A failed session is aborted and never
// affects its siblings.
func (f *Finalizer) Finalize(ctx context.Context, sessions []*Session) []s3types.TargetResult {
	results := make([]s3types.TargetResult, len(sessions))

	g := new(errgroup.Group)
	g.SetLimit(f.concurrency)
	for i, session := range sessions {
		g.Go(func() error {
			results[i] = f.finalize(ctx, session)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (f *Finalizer) finalize(ctx context.Context, s *Session) s3types.TargetResult {
	result := s3types.TargetResult{
		Key:      s.TargetKey,
		UploadID: s.UploadID,
		Sources:  s.Sources(),
		Status:   s3types.TargetAborted,
	}

	f.logger.Info().
		Str("key", s.TargetKey).
		Str("upload_id", s.UploadID).
		Msgf("Completing %s...", s.UploadID)

	// the store's part list is authoritative, not the local counter
	parts, err := f.store.ListParts(ctx, f.bucket, s.TargetKey, s.UploadID)
	if err != nil {
		f.logger.Error().
			Str("key", s.TargetKey).
			Str("upload_id", s.UploadID).
			Msgf("Unable to list pending parts for %s: %s", s.UploadID, errors.Message(err))
		abort(ctx, f.store, f.bucket, s, f.logger)
		result.Err = err
		return result
	}

	if err := f.store.CompleteMultipartUpload(ctx, f.bucket, s.TargetKey, s.UploadID, parts); err != nil {
		f.logger.Error().
			Str("key", s.TargetKey).
			Str("upload_id", s.UploadID).
			Msgf("Unable to complete %s: %s", s.UploadID, errors.Message(err))
		abort(ctx, f.store, f.bucket, s, f.logger)
		result.Err = err
		return result
	}

	result.Parts = len(parts)
	result.Status = s3types.TargetCompleted
	return result
}

// abortAll aborts every session after a construction failure.
func abortAll(
	ctx context.Context,
	st store.Store,
	bucket string,
	sessions []*Session,
	cause error,
	logger zerolog.Logger,
) []s3types.TargetResult {
	results := make([]s3types.TargetResult, 0, len(sessions))
	for _, s := range sessions {
		abort(ctx, st, bucket, s, logger)
		results = append(results, s3types.TargetResult{
			Key:      s.TargetKey,
			UploadID: s.UploadID,
			Sources:  s.Sources(),
			Status:   s3types.TargetAborted,
			Err:      cause,
		})
	}
	return results
}

// abort discards an upload. It runs even when ctx is cancelled, and its own
// failure is only logged so it never masks the error that caused it.
func abort(ctx context.Context, st store.Store, bucket string, s *Session, logger zerolog.Logger) {
	ctx = context.WithoutCancel(ctx)

	logger.Error().
		Str("key", s.TargetKey).
		Str("upload_id", s.UploadID).
		Msgf("Aborting %s...", s.UploadID)

	if err := st.AbortMultipartUpload(ctx, bucket, s.TargetKey, s.UploadID); err != nil {
		logger.Error().
			Str("key", s.TargetKey).
			Str("upload_id", s.UploadID).
			Str("error", errors.Message(err)).
			Msgf("Unable to abort: %s", s.UploadID)
	}
}
