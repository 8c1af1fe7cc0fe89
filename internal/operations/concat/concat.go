package concat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/pattern"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/walker"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// Config holds configuration for a concat run.
type Config struct {
	Bucket              string
	Prefix              string
	Source              string
	Target              string
	DryRun              bool
	Cleanup             bool
	PageSize            int32
	MinPartSize         int64
	FinalizeConcurrency int
	Logger              zerolog.Logger
}

// Run concatenates every object under cfg.Prefix whose key matches
// cfg.Source into the targets derived from cfg.Target.
//
// The returned error is non-nil only for failures that halt the run: an
// invalid pattern or any construction failure. Finalization and cleanup
// failures are reported through the result.
func Run(ctx context.Context, st store.Store, cfg Config) (*s3types.ConcatResult, error) {
	start := time.Now()

	matcher, err := pattern.Compile(cfg.Source, cfg.Target)
	if err != nil {
		return nil, errors.NewError("concat", err)
	}

	result := &s3types.ConcatResult{DryRun: cfg.DryRun}
	defer func() {
		result.Duration = time.Since(start)
	}()

	coordinator := NewCoordinator(st, matcher, cfg)
	w := walker.New(st, walker.Config{
		Bucket:   cfg.Bucket,
		Prefix:   cfg.Prefix,
		PageSize: cfg.PageSize,
	})

	err = coordinator.Construct(ctx, w)
	result.Mappings = coordinator.Mappings()

	if cfg.DryRun {
		return result, err
	}

	sessions := coordinator.Registry().Sessions()
	if err != nil {
		result.Targets = abortAll(ctx, st, cfg.Bucket, sessions, err, cfg.Logger)
		return result, err
	}

	finalizer := NewFinalizer(st, cfg.Bucket, cfg.FinalizeConcurrency, cfg.Logger)
	result.Targets = finalizer.Finalize(ctx, sessions)

	if cfg.Cleanup {
		result.Deleted, result.FailedDeletes = Cleanup(ctx, st, cfg.Bucket,
			eligibleSources(result.Targets), cfg.Logger)
	}

	return result, nil
}
