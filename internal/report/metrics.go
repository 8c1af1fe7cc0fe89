package report

import (
	"path"
	"sort"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// Metric tracks statistics over walked objects.
type Metric interface {
	// Register adds an object to the statistics.
	Register(obj s3types.Object)

	print(p *printer)
}

// Chain returns the metrics of a report in print order.
func Chain(prefix string, start time.Time) []Metric {
	return []Metric{
		NewGeneral(prefix, start),
		&FileSize{},
		NewExtensions(),
		&Modification{},
	}
}

// General counts files, folders and storage.
type General struct {
	start      time.Time
	skip       int
	folders    map[string]struct{}
	TotalFiles int64
	TotalSize  int64
}

// NewGeneral creates the general metric. Folders are counted relative to
// the directory portion of prefix.
func NewGeneral(prefix string, start time.Time) *General {
	skip := 0
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		skip = i + 1
	}
	return &General{
		start:   start,
		skip:    skip,
		folders: make(map[string]struct{}),
	}
}

// Register implements Metric.
func (g *General) Register(obj s3types.Object) {
	g.TotalFiles++
	g.TotalSize += obj.Size

	key := obj.Key
	if len(key) >= g.skip {
		key = key[g.skip:]
	}
	for dir := path.Dir(strings.TrimSuffix(key, "/")); dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
		g.folders[dir] = struct{}{}
	}
}

// TotalFolders returns the number of distinct folders seen.
func (g *General) TotalFolders() int {
	return len(g.folders)
}

func (g *General) print(p *printer) {
	p.head("general")
	p.pair("total_time", time.Since(g.start).Round(time.Second))
	p.pair("total_files", g.TotalFiles)
	p.pair("total_folders", g.TotalFolders())
	p.pair("total_storage", formatBytes(g.TotalSize))
}

// FileSize tracks the average, largest and smallest object.
type FileSize struct {
	TotalFiles int64
	TotalSize  int64
	Largest    Bounded[int64]
	Smallest   Bounded[int64]
}

// Register implements Metric.
func (f *FileSize) Register(obj s3types.Object) {
	f.TotalFiles++
	f.TotalSize += obj.Size
	Apply(&f.Smallest, &f.Largest, obj.Key, obj.Size)
}

// Average returns the mean object size, zero when nothing was registered.
func (f *FileSize) Average() int64 {
	if f.TotalFiles == 0 {
		return 0
	}
	return f.TotalSize / f.TotalFiles
}

func (f *FileSize) print(p *printer) {
	p.head("file_size")
	p.pair("average_file_size", formatBytes(f.Average()))
	p.pair("average_file_bytes", f.Average())

	bound(p, "largest_file", &f.Largest, func(size int64) {
		p.pair("largest_file_size", formatBytes(size))
		p.pair("largest_file_bytes", size)
	})
	bound(p, "smallest_file", &f.Smallest, func(size int64) {
		p.pair("smallest_file_size", formatBytes(size))
		p.pair("smallest_file_bytes", size)
	})
}

// Extensions counts file extensions.
type Extensions struct {
	counts map[string]int
}

// NewExtensions creates the extension metric.
func NewExtensions() *Extensions {
	return &Extensions{counts: make(map[string]int)}
}

// Register implements Metric. Dot files and keys without an extension are
// not counted.
func (e *Extensions) Register(obj s3types.Object) {
	base := path.Base(obj.Key)
	ext := path.Ext(base)
	if ext == "" || ext == base {
		return
	}
	e.counts[strings.TrimPrefix(ext, ".")]++
}

// Unique returns the number of distinct extensions.
func (e *Extensions) Unique() int {
	return len(e.counts)
}

// MostPopular returns the most frequent extension. Ties go to the
// lexicographically smallest one.
func (e *Extensions) MostPopular() (string, bool) {
	exts := make([]string, 0, len(e.counts))
	for ext := range e.counts {
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		return "", false
	}
	sort.Slice(exts, func(i, j int) bool {
		if e.counts[exts[i]] != e.counts[exts[j]] {
			return e.counts[exts[i]] > e.counts[exts[j]]
		}
		return exts[i] < exts[j]
	})
	return exts[0], true
}

func (e *Extensions) print(p *printer) {
	p.head("extensions")
	p.pair("unique_extensions", e.Unique())
	if ext, ok := e.MostPopular(); ok {
		p.pair("most_popular_extension", ext)
	}
}

// Modification tracks the earliest and latest modified objects.
type Modification struct {
	Earliest Bounded[string]
	Latest   Bounded[string]
}

// Register implements Metric.
func (m *Modification) Register(obj s3types.Object) {
	Apply(&m.Earliest, &m.Latest, obj.Key, obj.LastModified.UTC().Format(time.RFC3339))
}

func (m *Modification) print(p *printer) {
	p.head("modification")
	bound(p, "earliest_file", &m.Earliest, func(date string) {
		p.pair("earliest_file_date", date)
	})
	bound(p, "latest_file", &m.Latest, func(date string) {
		p.pair("latest_file_date", date)
	})
}
