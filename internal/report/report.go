package report

import (
	"context"
	"io"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/walker"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// Config holds the scope of a report.
type Config struct {
	Bucket   string
	Prefix   string
	PageSize int32
}

// Report is the metric chain filled by a walk.
type Report struct {
	Metrics []Metric
}

// Generate walks the listing and registers every object with each metric.
func Generate(ctx context.Context, lister store.Lister, cfg Config) (*Report, error) {
	r := &Report{Metrics: Chain(cfg.Prefix, time.Now())}

	w := walker.New(lister, walker.Config{
		Bucket:   cfg.Bucket,
		Prefix:   cfg.Prefix,
		PageSize: cfg.PageSize,
	})
	err := w.Walk(ctx, func(obj s3types.Object) error {
		for _, m := range r.Metrics {
			m.Register(obj)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Print writes every section to w.
func (r *Report) Print(w io.Writer) error {
	p := &printer{w: w}
	for _, m := range r.Metrics {
		m.print(p)
	}
	return p.err
}
