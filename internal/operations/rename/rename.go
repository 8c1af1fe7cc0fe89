// Package rename moves objects to keys derived from a pattern, one server
// side copy and delete at a time.
package rename

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

// Config holds configuration for a rename run.
type Config struct {
	Bucket   string
	Prefix   string
	Source   string
	Target   string
	DryRun   bool
	PageSize int32
	Logger   zerolog.Logger
}

// Run renames every object under cfg.Prefix whose key matches cfg.Source.
// The first failure halts the run; renames already done are kept.
func Run(ctx context.Context, st store.Store, cfg Config) (*s3types.RenameResult, error) {
	start := time.Now()

	matcher, err := pattern.Compile(cfg.Source, cfg.Target)
	if err != nil {
		return nil, errors.NewError("rename", err)
	}

	result := &s3types.RenameResult{DryRun: cfg.DryRun}
	defer func() {
		result.Duration = time.Since(start)
	}()

	w := walker.New(st, walker.Config{
		Bucket:   cfg.Bucket,
		Prefix:   cfg.Prefix,
		PageSize: cfg.PageSize,
	})

	err = w.Walk(ctx, func(obj s3types.Object) error {
		target, ok := matcher.Derive(obj.Key)
		if !ok {
			return nil
		}

		cfg.Logger.Info().
			Str("bucket", cfg.Bucket).
			Str("key", obj.Key).
			Str("target", target).
			Msgf("Renaming %s -> %s", obj.Key, target)

		if cfg.DryRun {
			result.Renamed = append(result.Renamed, s3types.Mapping{Source: obj.Key, Target: target})
			return nil
		}

		if err := st.CopyObject(ctx, cfg.Bucket, target, store.Locator(cfg.Bucket, obj.Key)); err != nil {
			return err
		}

		cfg.Logger.Info().
			Str("bucket", cfg.Bucket).
			Str("key", obj.Key).
			Msgf("Removing %s...", obj.Key)
		if err := st.DeleteObject(ctx, cfg.Bucket, obj.Key); err != nil {
			return err
		}

		result.Renamed = append(result.Renamed, s3types.Mapping{Source: obj.Key, Target: target})
		return nil
	})

	return result, err
}
