package concat

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// eligibleSources returns the sources of every completed target, in target
// order. Exclusion is per target: a key shared with a completed target stays
// eligible even when another target holding it was aborted.
func eligibleSources(results []s3types.TargetResult) []string {
	var keys []string
	for _, r := range results {
		if r.Status != s3types.TargetCompleted {
			continue
		}
		keys = append(keys, r.Sources...)
	}
	return keys
}

// Cleanup deletes keys one at a time. A failed delete is logged and skipped.
func Cleanup(
	ctx context.Context,
	st store.Store,
	bucket string,
	keys []string,
	logger zerolog.Logger,
) (deleted, failed []string) {
	for _, key := range keys {
		logger.Info().
			Str("bucket", bucket).
			Str("key", key).
			Msgf("Removing %s...", key)

		if err := st.DeleteObject(ctx, bucket, key); err != nil {
			logger.Error().
				Str("bucket", bucket).
				Str("key", key).
				Str("error", errors.Message(err)).
				Msgf("Unable to remove %s", key)
			failed = append(failed, key)
			continue
		}
		deleted = append(deleted, key)
	}
	return deleted, failed
}
