// Package walker turns a paginated bucket listing into a single item pull
// interface, hiding continuation tokens from callers.
package walker

import (
	"context"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// Config holds the listing scope of a walker.
type Config struct {
	Bucket   string
	Prefix   string
	PageSize int32
}

// ObjectWalker is a cursor over a bucket listing. It fetches one page at a
// time and only when the buffered page has been consumed.
// An ObjectWalker is not safe for concurrent use.
type ObjectWalker struct {
	lister   store.Lister
	bucket   string
	prefix   string
	pageSize int32

	token     string
	buffer    []s3types.Object
	exhausted bool
}

// New creates a walker over cfg. No remote call happens until Next.
func New(lister store.Lister, cfg Config) *ObjectWalker {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = s3types.DefaultPageSize
	}
	return &ObjectWalker{
		lister:   lister,
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		pageSize: pageSize,
	}
}

// Next returns the next object in listing order. The boolean is false once
// the listing is exhausted. A listing failure is returned as is and leaves
// the cursor where it was.
func (w *ObjectWalker) Next(ctx context.Context) (s3types.Object, bool, error) {
	for {
		if len(w.buffer) > 0 {
			obj := w.buffer[0]
			w.buffer = w.buffer[1:]
			return obj, true, nil
		}

		if w.exhausted {
			return s3types.Object{}, false, nil
		}

		page, err := w.lister.ListObjects(ctx, &store.ListInput{
			Bucket:            w.bucket,
			Prefix:            w.prefix,
			ContinuationToken: w.token,
			MaxKeys:           w.pageSize,
		})
		if err != nil {
			return s3types.Object{}, false, err
		}

		// absent contents end the walk regardless of the token
		if page.Objects == nil {
			w.exhausted = true
			return s3types.Object{}, false, nil
		}

		w.buffer = page.Objects
		w.token = page.NextContinuationToken
		if w.token == "" {
			w.exhausted = true
		}
	}
}

// Walk calls fn for every remaining object, stopping at the first error.
func (w *ObjectWalker) Walk(ctx context.Context, fn func(s3types.Object) error) error {
	for {
		obj, ok, err := w.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(obj); err != nil {
			return err
		}
	}
}
