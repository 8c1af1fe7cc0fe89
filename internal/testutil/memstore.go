package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/smithy-go"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

var _ store.Store = (*MemStore)(nil)

// Call records one invocation of a MemStore method.
type Call struct {
	Op       string
	Bucket   string
	Key      string
	UploadID string
	Part     int32
	Source   string
}

// Mutating reports whether the call changes remote state.
func (c Call) Mutating() bool {
	return c.Op != store.OpList && c.Op != store.OpListParts
}

type memUpload struct {
	bucket string
	key    string
	parts  map[int32]s3types.Part
}

// MemStore is an in-memory store.Store that records every call.
// Failures are injected per operation and key with FailOn.
type MemStore struct {
	mu       sync.Mutex
	objects  map[string]map[string]s3types.Object
	uploads  map[string]*memUpload
	failures map[string]error
	nth      map[string]map[int]error
	counts   map[string]int
	calls    []Call
	nextID   int

	// EmptyPageContents makes a listing with no entries return an empty,
	// non-nil slice instead of absent contents.
	EmptyPageContents bool
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		objects:  make(map[string]map[string]s3types.Object),
		uploads:  make(map[string]*memUpload),
		failures: make(map[string]error),
		nth:      make(map[string]map[int]error),
		counts:   make(map[string]int),
	}
}

// Put stores an object of the given size.
func (m *MemStore) Put(bucket, key string, size int64) {
	m.PutObject(bucket, s3types.Object{
		Key:          key,
		Size:         size,
		LastModified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}

// PutObject stores obj as is.
func (m *MemStore) PutObject(bucket string, obj s3types.Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(bucket, obj)
}

func (m *MemStore) putLocked(bucket string, obj s3types.Object) {
	if m.objects[bucket] == nil {
		m.objects[bucket] = make(map[string]s3types.Object)
	}
	m.objects[bucket][obj.Key] = obj
}

// FailOn makes every op call on key return err. An empty key matches any key.
func (m *MemStore) FailOn(op, key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op+"|"+key] = err
}

// FailOnCall makes only the n-th call of op return err, counting from 1.
func (m *MemStore) FailOnCall(op string, n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nth[op] == nil {
		m.nth[op] = make(map[int]error)
	}
	m.nth[op][n] = err
}

// FailAPI is FailOn with a remote API fault.
func (m *MemStore) FailAPI(op, key, code, message string) {
	m.FailOn(op, key, &smithy.GenericAPIError{Code: code, Message: message})
}

// Object returns the stored object at bucket/key.
func (m *MemStore) Object(bucket, key string) (s3types.Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[bucket][key]
	return obj, ok
}

// Keys returns the sorted keys of bucket.
func (m *MemStore) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedKeysLocked(bucket)
}

// Calls returns a copy of the recorded calls.
func (m *MemStore) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsFor returns the recorded calls of one operation.
func (m *MemStore) CallsFor(op string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// MutatingCalls returns every recorded call that changes remote state.
func (m *MemStore) MutatingCalls() []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Mutating() {
			out = append(out, c)
		}
	}
	return out
}

// OpenUploads returns the ids of uploads neither completed nor aborted.
func (m *MemStore) OpenUploads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.uploads))
	for id := range m.uploads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *MemStore) record(c Call) error {
	m.calls = append(m.calls, c)
	m.counts[c.Op]++
	if err, ok := m.nth[c.Op][m.counts[c.Op]]; ok {
		return errors.FromRemote(c.Op, c.Bucket, c.Key, err)
	}
	if err, ok := m.failures[c.Op+"|"+c.Key]; ok {
		return errors.FromRemote(c.Op, c.Bucket, c.Key, err)
	}
	if err, ok := m.failures[c.Op+"|"]; ok {
		return errors.FromRemote(c.Op, c.Bucket, c.Key, err)
	}
	return nil
}

func (m *MemStore) sortedKeysLocked(bucket string) []string {
	keys := make([]string, 0, len(m.objects[bucket]))
	for k := range m.objects[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *MemStore) sourceLocked(source string) (s3types.Object, error) {
	bucket, key := store.SplitLocator(source)
	obj, ok := m.objects[bucket][key]
	if !ok {
		return s3types.Object{}, &smithy.GenericAPIError{
			Code:    "NoSuchKey",
			Message: "The specified key does not exist.",
		}
	}
	return obj, nil
}

// ListObjects lists one page in lexicographic key order.
func (m *MemStore) ListObjects(_ context.Context, in *store.ListInput) (*s3types.ObjectPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: store.OpList, Bucket: in.Bucket, Key: in.Prefix}); err != nil {
		return nil, err
	}

	var matching []string
	for _, k := range m.sortedKeysLocked(in.Bucket) {
		if strings.HasPrefix(k, in.Prefix) {
			matching = append(matching, k)
		}
	}

	// tokens resume after the last key returned
	start := 0
	if in.ContinuationToken != "" {
		start = sort.SearchStrings(matching, in.ContinuationToken)
		if start < len(matching) && matching[start] == in.ContinuationToken {
			start++
		}
	}

	end := len(matching)
	if in.MaxKeys > 0 && start+int(in.MaxKeys) < end {
		end = start + int(in.MaxKeys)
	}

	page := &s3types.ObjectPage{}
	if end > start || m.EmptyPageContents {
		page.Objects = make([]s3types.Object, 0, end-start)
		for _, k := range matching[start:end] {
			page.Objects = append(page.Objects, m.objects[in.Bucket][k])
		}
	}
	if end < len(matching) {
		page.NextContinuationToken = matching[end-1]
	}
	return page, nil
}

// CopyObject copies source onto bucket/key.
func (m *MemStore) CopyObject(_ context.Context, bucket, key, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: store.OpCopy, Bucket: bucket, Key: key, Source: source}); err != nil {
		return err
	}
	obj, err := m.sourceLocked(source)
	if err != nil {
		return errors.FromRemote(store.OpCopy, bucket, key, err)
	}
	obj.Key = key
	m.putLocked(bucket, obj)
	return nil
}

// CreateMultipartUpload starts an upload with a sequential id.
func (m *MemStore) CreateMultipartUpload(_ context.Context, bucket, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: store.OpCreateMultipartUpload, Bucket: bucket, Key: key}); err != nil {
		return "", err
	}
	m.nextID++
	id := fmt.Sprintf("upload-%d", m.nextID)
	m.uploads[id] = &memUpload{bucket: bucket, key: key, parts: make(map[int32]s3types.Part)}
	return id, nil
}

// UploadPartCopy copies source into a part of the upload.
func (m *MemStore) UploadPartCopy(
	_ context.Context,
	bucket, key, uploadID string,
	part int32,
	source string,
) (*s3types.Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := Call{Op: store.OpUploadPartCopy, Bucket: bucket, Key: key, UploadID: uploadID, Part: part, Source: source}
	if err := m.record(call); err != nil {
		return nil, err
	}
	upload, err := m.uploadLocked(uploadID)
	if err != nil {
		return nil, errors.FromRemote(store.OpUploadPartCopy, bucket, key, err)
	}
	obj, err := m.sourceLocked(source)
	if err != nil {
		return nil, errors.FromRemote(store.OpUploadPartCopy, bucket, key, err)
	}

	p := s3types.Part{Number: part, ETag: fmt.Sprintf("etag-%s-%d", uploadID, part), Size: obj.Size}
	upload.parts[part] = p
	return &p, nil
}

// ListParts lists the parts of the upload in number order.
func (m *MemStore) ListParts(_ context.Context, bucket, key, uploadID string) ([]s3types.Part, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: store.OpListParts, Bucket: bucket, Key: key, UploadID: uploadID}); err != nil {
		return nil, err
	}
	upload, err := m.uploadLocked(uploadID)
	if err != nil {
		return nil, errors.FromRemote(store.OpListParts, bucket, key, err)
	}

	parts := make([]s3types.Part, 0, len(upload.parts))
	for _, p := range upload.parts {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Number < parts[j].Number })
	return parts, nil
}

// CompleteMultipartUpload writes the target object and closes the upload.
func (m *MemStore) CompleteMultipartUpload(
	_ context.Context,
	bucket, key, uploadID string,
	parts []s3types.Part,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: store.OpCompleteMultipartUpload, Bucket: bucket, Key: key, UploadID: uploadID}); err != nil {
		return err
	}
	upload, err := m.uploadLocked(uploadID)
	if err != nil {
		return errors.FromRemote(store.OpCompleteMultipartUpload, bucket, key, err)
	}

	var size int64
	for _, p := range parts {
		stored, ok := upload.parts[p.Number]
		if !ok || stored.ETag != p.ETag {
			return errors.FromRemote(store.OpCompleteMultipartUpload, bucket, key, &smithy.GenericAPIError{
				Code:    "InvalidPart",
				Message: "One or more of the specified parts could not be found.",
			})
		}
		size += stored.Size
	}

	delete(m.uploads, uploadID)
	m.putLocked(bucket, s3types.Object{
		Key:          key,
		Size:         size,
		LastModified: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	return nil
}

// AbortMultipartUpload discards the upload.
func (m *MemStore) AbortMultipartUpload(_ context.Context, bucket, key, uploadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: store.OpAbortMultipartUpload, Bucket: bucket, Key: key, UploadID: uploadID}); err != nil {
		return err
	}
	if _, err := m.uploadLocked(uploadID); err != nil {
		return errors.FromRemote(store.OpAbortMultipartUpload, bucket, key, err)
	}
	delete(m.uploads, uploadID)
	return nil
}

// DeleteObject removes bucket/key. Deleting a missing key succeeds, as in S3.
func (m *MemStore) DeleteObject(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: store.OpDelete, Bucket: bucket, Key: key}); err != nil {
		return err
	}
	delete(m.objects[bucket], key)
	return nil
}

func (m *MemStore) uploadLocked(uploadID string) (*memUpload, error) {
	upload, ok := m.uploads[uploadID]
	if !ok {
		return nil, &smithy.GenericAPIError{
			Code:    "NoSuchUpload",
			Message: "The specified upload does not exist.",
		}
	}
	return upload, nil
}
