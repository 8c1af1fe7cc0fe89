package concat

import (
	"bytes"
	"context"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

const (
	bucket   = "test-bucket"
	partSize = s3types.MinPartSize
)

func newLogStore() *testutil.MemStore {
	mem := testutil.NewMemStore()
	mem.Put(bucket, "data/keep.txt", 12)
	mem.Put(bucket, "logs/a.log", partSize)
	mem.Put(bucket, "logs/b.log", partSize+1)
	mem.Put(bucket, "logs/c.log", 2*partSize)
	return mem
}

func mergeConfig() Config {
	return Config{
		Bucket:   bucket,
		Source:   `logs/(.*)\.log`,
		Target:   "logs/merged.log",
		PageSize: 2,
		Logger:   zerolog.Nop(),
	}
}

func touches(c testutil.Call, key string) bool {
	return c.Key == key || c.Source == store.Locator(bucket, key)
}

func TestRun_EndToEnd(t *testing.T) {
	mem := newLogStore()
	cfg := mergeConfig()
	cfg.Cleanup = true

	result, err := Run(context.Background(), mem, cfg)
	require.NoError(t, err)

	copies := mem.CallsFor(store.OpUploadPartCopy)
	require.Len(t, copies, 3)
	for i, c := range copies {
		assert.Equal(t, int32(i+1), c.Part)
		assert.Equal(t, "upload-1", c.UploadID)
		assert.Equal(t, "logs/merged.log", c.Key)
	}
	assert.Equal(t, "test-bucket/logs/a.log", copies[0].Source)
	assert.Equal(t, "test-bucket/logs/c.log", copies[2].Source)

	assert.Len(t, mem.CallsFor(store.OpCreateMultipartUpload), 1)
	assert.Len(t, mem.CallsFor(store.OpCompleteMultipartUpload), 1)
	assert.Empty(t, mem.OpenUploads())

	require.Len(t, result.Targets, 1)
	target := result.Targets[0]
	assert.Equal(t, s3types.TargetCompleted, target.Status)
	assert.Equal(t, 3, target.Parts)
	assert.Equal(t, []string{"logs/a.log", "logs/b.log", "logs/c.log"}, target.Sources)

	assert.Equal(t, []string{"logs/a.log", "logs/b.log", "logs/c.log"}, result.Deleted)
	assert.Empty(t, result.FailedDeletes)
	assert.Equal(t, []string{"data/keep.txt", "logs/merged.log"}, mem.Keys(bucket))

	merged, ok := mem.Object(bucket, "logs/merged.log")
	require.True(t, ok)
	assert.Equal(t, 4*partSize+1, merged.Size)

	for _, c := range mem.MutatingCalls() {
		assert.False(t, touches(c, "data/keep.txt"), "untouched key was used by %s", c.Op)
	}
}

func TestRun_WithoutCleanupKeepsSources(t *testing.T) {
	mem := newLogStore()

	result, err := Run(context.Background(), mem, mergeConfig())
	require.NoError(t, err)

	assert.Empty(t, mem.CallsFor(store.OpDelete))
	assert.Nil(t, result.Deleted)
	assert.Contains(t, mem.Keys(bucket), "logs/a.log")
}

func TestRun_ObjectTooSmall(t *testing.T) {
	mem := newLogStore()
	mem.Put(bucket, "logs/d.log", partSize-1)
	cfg := mergeConfig()
	cfg.Cleanup = true

	result, err := Run(context.Background(), mem, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrObjectTooSmall)
	assert.Contains(t, err.Error(), "logs/d.log")

	assert.Empty(t, mem.CallsFor(store.OpCompleteMultipartUpload))
	assert.Empty(t, mem.CallsFor(store.OpDelete))
	assert.Len(t, mem.CallsFor(store.OpAbortMultipartUpload), 1)
	assert.Empty(t, mem.OpenUploads())

	require.Len(t, result.Targets, 1)
	assert.Equal(t, s3types.TargetAborted, result.Targets[0].Status)
	assert.ErrorIs(t, result.Targets[0].Err, errors.ErrObjectTooSmall)
}

func TestRun_SmallFirstObjectCreatesNothing(t *testing.T) {
	mem := testutil.NewMemStore()
	mem.Put(bucket, "logs/a.log", 10)
	mem.Put(bucket, "logs/b.log", partSize)

	_, err := Run(context.Background(), mem, mergeConfig())
	require.ErrorIs(t, err, errors.ErrObjectTooSmall)
	assert.Empty(t, mem.MutatingCalls())
}

func TestRun_SkipsSelfMapping(t *testing.T) {
	mem := testutil.NewMemStore()
	mem.Put(bucket, "logs/a.log", partSize)
	mem.Put(bucket, "logs/merged.log", 1)

	result, err := Run(context.Background(), mem, mergeConfig())
	require.NoError(t, err)

	for _, c := range mem.MutatingCalls() {
		assert.NotEqual(t, store.Locator(bucket, "logs/merged.log"), c.Source)
	}
	assert.Equal(t, []s3types.Mapping{{Source: "logs/a.log", Target: "logs/merged.log"}}, result.Mappings)
}

func TestRun_SelfMappingOnlyCreatesNoSession(t *testing.T) {
	mem := testutil.NewMemStore()
	mem.Put(bucket, "logs/a.log", 1)

	cfg := mergeConfig()
	cfg.Target = "logs/$1.log"

	result, err := Run(context.Background(), mem, cfg)
	require.NoError(t, err)
	assert.Empty(t, mem.MutatingCalls())
	assert.Empty(t, result.Targets)
}

func TestRun_InterleavedTargets(t *testing.T) {
	mem := testutil.NewMemStore()
	for _, key := range []string{"1-x.log", "1-y.log", "2-x.log", "2-y.log", "3-x.log"} {
		mem.Put(bucket, key, partSize)
	}

	result, err := Run(context.Background(), mem, Config{
		Bucket: bucket,
		Source: `^\d+-(\w+)\.log$`,
		Target: "$1.log",
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	parts := map[string][]int32{}
	for _, c := range mem.CallsFor(store.OpUploadPartCopy) {
		parts[c.Key] = append(parts[c.Key], c.Part)
	}
	assert.Equal(t, []int32{1, 2, 3}, parts["x.log"])
	assert.Equal(t, []int32{1, 2}, parts["y.log"])

	require.Len(t, result.Targets, 2)
	assert.Equal(t, "x.log", result.Targets[0].Key)
	assert.Equal(t, "y.log", result.Targets[1].Key)
	assert.Len(t, mem.CallsFor(store.OpCreateMultipartUpload), 2)
}

func TestRun_DryRun(t *testing.T) {
	mem := newLogStore()
	cfg := mergeConfig()
	cfg.DryRun = true
	cfg.Cleanup = true

	result, err := Run(context.Background(), mem, cfg)
	require.NoError(t, err)

	assert.Empty(t, mem.MutatingCalls())
	assert.True(t, result.DryRun)
	assert.Empty(t, result.Targets)
	assert.Len(t, result.Mappings, 3)
}

func TestRun_DryRunReportsConstructionFailure(t *testing.T) {
	mem := newLogStore()
	mem.Put(bucket, "logs/tiny.log", 1)
	cfg := mergeConfig()
	cfg.DryRun = true

	_, err := Run(context.Background(), mem, cfg)
	assert.ErrorIs(t, err, errors.ErrObjectTooSmall)
	assert.Empty(t, mem.MutatingCalls())
}

func TestCoordinator_DryRunLeavesRegistryEmpty(t *testing.T) {
	mem := newLogStore()
	cfg := mergeConfig()
	cfg.DryRun = true

	c := NewCoordinator(mem, mustMatcher(t, cfg), cfg)
	for _, key := range mem.Keys(bucket) {
		obj, _ := mem.Object(bucket, key)
		require.NoError(t, c.Process(context.Background(), obj))
	}
	assert.Equal(t, 0, c.Registry().Len())
	assert.Len(t, c.Mappings(), 3)
}

func TestRun_InvalidPattern(t *testing.T) {
	mem := newLogStore()
	cfg := mergeConfig()
	cfg.Source = `logs/(`

	result, err := Run(context.Background(), mem, cfg)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, errors.ErrInvalidPattern)
	assert.Empty(t, mem.Calls())
}

func TestRun_ConstructionFailuresAbortEverySession(t *testing.T) {
	tests := []struct {
		name       string
		op         string
		key        string
		wantAborts int
	}{
		{name: "create failure", op: store.OpCreateMultipartUpload, key: "y.log", wantAborts: 1},
		{name: "part copy failure", op: store.OpUploadPartCopy, key: "y.log", wantAborts: 2},
		{name: "listing failure", op: store.OpList, key: "", wantAborts: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := testutil.NewMemStore()
			for _, key := range []string{"1-x.log", "1-y.log", "2-x.log"} {
				mem.Put(bucket, key, partSize)
			}
			mem.FailAPI(tt.op, tt.key, "InternalError", "We encountered an internal error.")

			result, err := Run(context.Background(), mem, Config{
				Bucket:  bucket,
				Source:  `^\d+-(\w+)\.log$`,
				Target:  "$1.log",
				Cleanup: true,
				Logger:  zerolog.Nop(),
			})
			require.Error(t, err)
			assert.Equal(t, "We encountered an internal error.", errors.Message(err))

			assert.Len(t, mem.CallsFor(store.OpAbortMultipartUpload), tt.wantAborts)
			assert.Empty(t, mem.CallsFor(store.OpCompleteMultipartUpload))
			assert.Empty(t, mem.CallsFor(store.OpDelete))
			assert.Empty(t, mem.OpenUploads())
			for _, target := range result.Targets {
				assert.Equal(t, s3types.TargetAborted, target.Status)
			}
		})
	}
}

func TestRun_ListingFailureMidWalkAbortsOpenSessions(t *testing.T) {
	mem := testutil.NewMemStore()
	for _, key := range []string{"1-x.log", "1-y.log", "2-x.log", "2-y.log"} {
		mem.Put(bucket, key, partSize)
	}
	mem.FailOnCall(store.OpList, 2, &smithy.GenericAPIError{
		Code:    "InternalError",
		Message: "We encountered an internal error.",
	})

	result, err := Run(context.Background(), mem, Config{
		Bucket:   bucket,
		Source:   `^\d+-(\w+)\.log$`,
		Target:   "$1.log",
		Cleanup:  true,
		PageSize: 2,
		Logger:   zerolog.Nop(),
	})
	require.Error(t, err)
	assert.Equal(t, "We encountered an internal error.", errors.Message(err))

	assert.Len(t, mem.CallsFor(store.OpList), 2)
	assert.Len(t, mem.CallsFor(store.OpUploadPartCopy), 2)
	assert.Len(t, mem.CallsFor(store.OpAbortMultipartUpload), 2)
	assert.Empty(t, mem.CallsFor(store.OpCompleteMultipartUpload))
	assert.Empty(t, mem.CallsFor(store.OpDelete))
	assert.Empty(t, mem.OpenUploads())

	require.Len(t, result.Targets, 2)
	for _, target := range result.Targets {
		assert.Equal(t, s3types.TargetAborted, target.Status)
	}
	assert.Equal(t, []string{"1-x.log", "1-y.log", "2-x.log", "2-y.log"}, mem.Keys(bucket))
}

func TestRun_AbortFailureDoesNotMaskCause(t *testing.T) {
	mem := newLogStore()
	mem.Put(bucket, "logs/d.log", 1)
	mem.FailAPI(store.OpAbortMultipartUpload, "", "InternalError", "abort exploded")

	var buf bytes.Buffer
	cfg := mergeConfig()
	cfg.Logger = zerolog.New(&buf)

	_, err := Run(context.Background(), mem, cfg)
	require.ErrorIs(t, err, errors.ErrObjectTooSmall)
	assert.Contains(t, buf.String(), "Aborting upload-1...")
	assert.Contains(t, buf.String(), "Unable to abort: upload-1")
}

func TestRun_FinalizationFailureExcludesOnlyThatTarget(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		wantLog string
	}{
		{name: "list parts failure", op: store.OpListParts, wantLog: "Unable to list pending parts for upload-2: boom"},
		{name: "complete failure", op: store.OpCompleteMultipartUpload, wantLog: "Unable to complete upload-2: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := testutil.NewMemStore()
			for _, key := range []string{"1-x.log", "1-y.log", "2-x.log", "2-y.log"} {
				mem.Put(bucket, key, partSize)
			}
			mem.FailAPI(tt.op, "y.log", "InternalError", "boom")

			var buf bytes.Buffer
			result, err := Run(context.Background(), mem, Config{
				Bucket:  bucket,
				Source:  `^\d+-(\w+)\.log$`,
				Target:  "$1.log",
				Cleanup: true,
				Logger:  zerolog.New(&buf),
			})
			require.NoError(t, err)

			require.Len(t, result.Targets, 2)
			assert.Equal(t, s3types.TargetCompleted, result.Targets[0].Status)
			assert.Equal(t, s3types.TargetAborted, result.Targets[1].Status)
			assert.Error(t, result.Targets[1].Err)

			assert.Equal(t, []string{"1-x.log", "2-x.log"}, result.Deleted)
			assert.Equal(t, []string{"1-y.log", "2-y.log", "x.log"}, mem.Keys(bucket))
			assert.Empty(t, mem.OpenUploads())
			assert.Contains(t, buf.String(), tt.wantLog)
		})
	}
}

func TestRun_CleanupFailureContinues(t *testing.T) {
	mem := newLogStore()
	mem.FailAPI(store.OpDelete, "logs/b.log", "AccessDenied", "Access Denied")
	cfg := mergeConfig()
	cfg.Cleanup = true

	var buf bytes.Buffer
	cfg.Logger = zerolog.New(&buf)

	result, err := Run(context.Background(), mem, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"logs/a.log", "logs/c.log"}, result.Deleted)
	assert.Equal(t, []string{"logs/b.log"}, result.FailedDeletes)
	assert.Contains(t, buf.String(), "Unable to remove logs/b.log")
}

func TestRun_ConcurrentFinalization(t *testing.T) {
	mem := testutil.NewMemStore()
	targets := []string{"a", "b", "c", "d", "e", "f"}
	for _, name := range targets {
		mem.Put(bucket, "in/"+name+"-1", partSize)
		mem.Put(bucket, "in/"+name+"-2", partSize)
	}

	result, err := Run(context.Background(), mem, Config{
		Bucket:              bucket,
		Prefix:              "in/",
		Source:              `^in/(\w)-\d$`,
		Target:              "out/$1",
		Cleanup:             true,
		FinalizeConcurrency: 4,
		Logger:              zerolog.Nop(),
	})
	require.NoError(t, err)

	require.Len(t, result.Targets, len(targets))
	for i, name := range targets {
		assert.Equal(t, "out/"+name, result.Targets[i].Key)
		assert.Equal(t, s3types.TargetCompleted, result.Targets[i].Status)
		assert.Equal(t, 2, result.Targets[i].Parts)
	}
	assert.Len(t, result.Deleted, 2*len(targets))
}

func TestRun_LogsProgress(t *testing.T) {
	mem := newLogStore()
	cfg := mergeConfig()
	cfg.Cleanup = true

	var buf bytes.Buffer
	cfg.Logger = zerolog.New(&buf)

	_, err := Run(context.Background(), mem, cfg)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Concatenating logs/a.log -> logs/merged.log")
	assert.Contains(t, out, "Completing upload-1...")
	assert.Contains(t, out, "Removing logs/c.log...")
	assert.NotContains(t, out, "data/keep.txt")
}

func TestFinalize_OverlappingSourcesArePerSession(t *testing.T) {
	ctx := context.Background()
	mem := testutil.NewMemStore()
	for _, key := range []string{"k1", "k2", "k3"} {
		mem.Put(bucket, key, partSize)
	}

	registry := NewRegistry()
	build := func(target string, sources ...string) {
		id, err := mem.CreateMultipartUpload(ctx, bucket, target)
		require.NoError(t, err)
		s := registry.Add(target, id)
		for _, src := range sources {
			_, err := mem.UploadPartCopy(ctx, bucket, target, id, s.NextPart(), store.Locator(bucket, src))
			require.NoError(t, err)
			s.record(src)
		}
	}
	build("A", "k1", "k2")
	build("B", "k2", "k3")
	mem.FailAPI(store.OpCompleteMultipartUpload, "B", "InternalError", "boom")

	results := NewFinalizer(mem, bucket, 1, zerolog.Nop()).Finalize(ctx, registry.Sessions())
	require.Len(t, results, 2)
	assert.Equal(t, s3types.TargetCompleted, results[0].Status)
	assert.Equal(t, s3types.TargetAborted, results[1].Status)

	// k2 belongs to the aborted target too, but only B's own exclusion applies
	assert.Equal(t, []string{"k1", "k2"}, eligibleSources(results))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := r.Add("a", "upload-a")
	b := r.Add("b", "upload-b")
	again := r.Add("a", "upload-other")

	assert.Same(t, a, again)
	assert.Equal(t, "upload-a", again.UploadID)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []*Session{a, b}, r.Sessions())

	assert.Equal(t, int32(1), a.NextPart())
	a.record("x")
	a.record("y")
	assert.Equal(t, int32(3), a.NextPart())
	assert.Equal(t, []string{"x", "y"}, a.Sources())

	_, ok := r.Get("missing")
	assert.False(t, ok)
}
