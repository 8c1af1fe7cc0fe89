package concat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/pattern"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/walker"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// Coordinator groups walked objects by target key and copies each of them
// into the next part of its target upload. Part copies are strictly
// sequential.
type Coordinator struct {
	store       store.Store
	matcher     *pattern.Matcher
	bucket      string
	minPartSize int64
	dryRun      bool
	logger      zerolog.Logger

	registry *Registry
	mappings []s3types.Mapping
}

// NewCoordinator creates a coordinator for a single run.
func NewCoordinator(st store.Store, matcher *pattern.Matcher, cfg Config) *Coordinator {
	minPartSize := cfg.MinPartSize
	if minPartSize < s3types.MinPartSize {
		minPartSize = s3types.MinPartSize
	}
	return &Coordinator{
		store:       st,
		matcher:     matcher,
		bucket:      cfg.Bucket,
		minPartSize: minPartSize,
		dryRun:      cfg.DryRun,
		logger:      cfg.Logger,
		registry:    NewRegistry(),
	}
}

// Construct processes every object of the walk. It stops at the first
// failure and leaves the sessions created so far in the registry.
func (c *Coordinator) Construct(ctx context.Context, w *walker.ObjectWalker) error {
	return w.Walk(ctx, func(obj s3types.Object) error {
		return c.Process(ctx, obj)
	})
}

// Process handles one walked object. Objects that do not match, or that
// would map onto themselves, are skipped without any remote call.
func (c *Coordinator) Process(ctx context.Context, obj s3types.Object) error {
	target, ok := c.matcher.Derive(obj.Key)
	if !ok {
		return nil
	}

	if obj.Size < c.minPartSize {
		return errors.NewObjectError("concat", c.bucket, obj.Key,
			fmt.Errorf("%w: %d bytes, minimum is %d", errors.ErrObjectTooSmall, obj.Size, c.minPartSize))
	}

	c.logger.Info().
		Str("bucket", c.bucket).
		Str("key", obj.Key).
		Str("target", target).
		Msgf("Concatenating %s -> %s", obj.Key, target)
	c.mappings = append(c.mappings, s3types.Mapping{Source: obj.Key, Target: target})

	if c.dryRun {
		return nil
	}

	session, ok := c.registry.Get(target)
	if !ok {
		uploadID, err := c.store.CreateMultipartUpload(ctx, c.bucket, target)
		if err != nil {
			return err
		}
		session = c.registry.Add(target, uploadID)
		c.logger.Debug().
			Str("key", target).
			Str("upload_id", uploadID).
			Msg("created multipart upload")
	}

	part := session.NextPart()
	if _, err := c.store.UploadPartCopy(ctx, c.bucket, target, session.UploadID, part,
		store.Locator(c.bucket, obj.Key)); err != nil {
		return err
	}
	session.record(obj.Key)

	c.logger.Debug().
		Str("key", obj.Key).
		Str("upload_id", session.UploadID).
		Int32("part", part).
		Msg("copied part")
	return nil
}

// Registry returns the sessions created so far.
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// Mappings returns every matched source/target pair in walk order.
func (c *Coordinator) Mappings() []s3types.Mapping {
	return c.mappings
}
