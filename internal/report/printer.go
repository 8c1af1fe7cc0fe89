package report

import (
	"cmp"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// printer writes sections and pairs, keeping the first write error.
type printer struct {
	w       io.Writer
	err     error
	started bool
}

func (p *printer) head(label string) {
	if p.started {
		p.printf("\n")
	}
	p.started = true
	p.printf("[%s]\n", label)
}

func (p *printer) pair(label string, value any) {
	p.printf("%s=%v\n", label, value)
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// bound prints the name and tie count of a bound, after the value lines
// written by values. Unset bounds print nothing.
func bound[T cmp.Ordered](p *printer, label string, b *Bounded[T], values func(T)) {
	if b.IsUnset() {
		return
	}
	values(b.Value)
	p.pair(label+"_name", b.Key)
	if b.Count > 1 {
		p.pair(label+"_others", b.Count)
	}
}

// formatBytes renders a byte count the compact way, e.g. 5.0MB.
func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return strings.Replace(humanize.Bytes(uint64(n)), " ", "", 1)
}
