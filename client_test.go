package s3utils

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// TestClient_New tests the New() constructor for each backend.
func TestClient_New(t *testing.T) {
	tests := []struct {
		name      string
		opts      []s3types.Option
		wantStore any
		wantErr   bool
	}{
		{
			name:      "default configuration",
			opts:      nil,
			wantStore: &store.S3Store{},
		},
		{
			name: "aws with endpoint and static credentials",
			opts: []s3types.Option{
				WithRegion("eu-west-1"),
				WithEndpoint("http://localhost:4566"),
				WithForcePathStyle(true),
				WithCredentials("test", "test"),
				WithTimeout(5 * time.Second),
			},
			wantStore: &store.S3Store{},
		},
		{
			name: "minio",
			opts: []s3types.Option{
				WithBackend(s3types.BackendMinio),
				WithEndpoint("http://localhost:9000"),
				WithCredentials("minio", "minio123"),
			},
			wantStore: &store.MinioStore{},
		},
		{
			name:    "minio without endpoint",
			opts:    []s3types.Option{WithBackend(s3types.BackendMinio)},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			opts:    []s3types.Option{WithBackend("gcs")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(context.Background(), tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidInput(err))
				assert.Nil(t, client)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, client)
			assert.IsType(t, tt.wantStore, client.store)
			assert.NoError(t, client.Close())
		})
	}
}

// TestClient_New_WithCustomConfig tests client creation with a custom AWS configuration.
func TestClient_New_WithCustomConfig(t *testing.T) {
	custom := aws.Config{Region: "ap-south-1"}

	client, err := New(context.Background(), WithAWSConfig(&custom))
	require.NoError(t, err)
	assert.Same(t, &custom, client.Config().CustomAWSConfig)

	s3Client, err := newS3Client(context.Background(), client.Config())
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", s3Client.Options().Region)
	assert.Equal(t, 1, s3Client.Options().RetryMaxAttempts)
}

func TestNewS3Client(t *testing.T) {
	tests := []struct {
		name         string
		cfg          s3types.ClientConfig
		wantRegion   string
		wantEndpoint *string
		wantPath     bool
	}{
		{
			name:       "explicit region",
			cfg:        s3types.ClientConfig{Region: "us-west-2"},
			wantRegion: "us-west-2",
		},
		{
			name: "endpoint and path style",
			cfg: s3types.ClientConfig{
				Region:         "us-east-1",
				Endpoint:       "http://localhost:4566",
				ForcePathStyle: true,
			},
			wantRegion:   "us-east-1",
			wantEndpoint: aws.String("http://localhost:4566"),
			wantPath:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s3Client, err := newS3Client(context.Background(), tt.cfg)
			require.NoError(t, err)

			opts := s3Client.Options()
			assert.Equal(t, tt.wantRegion, opts.Region)
			assert.Equal(t, tt.wantEndpoint, opts.BaseEndpoint)
			assert.Equal(t, tt.wantPath, opts.UsePathStyle)
			assert.Equal(t, 1, opts.RetryMaxAttempts)
		})
	}
}

// TestClient_OptionDefaults tests the resolved configuration and option guards.
func TestClient_OptionDefaults(t *testing.T) {
	cfg := resolve(nil)
	assert.Equal(t, s3types.BackendAWS, cfg.Backend)
	assert.True(t, cfg.UseSSL)
	assert.Equal(t, 1, cfg.FinalizeConcurrency)
	assert.Equal(t, s3types.DefaultPageSize, cfg.PageSize)
	assert.Equal(t, s3types.MinPartSize, cfg.MinPartSize)

	cfg = resolve([]s3types.Option{
		WithFinalizeConcurrency(0),
		WithPageSize(5000),
		WithMinPartSize(1024),
	})
	assert.Equal(t, 1, cfg.FinalizeConcurrency)
	assert.Equal(t, s3types.DefaultPageSize, cfg.PageSize)
	assert.Equal(t, s3types.MinPartSize, cfg.MinPartSize)

	cfg = resolve([]s3types.Option{
		WithFinalizeConcurrency(4),
		WithPageSize(10),
		WithMinPartSize(8_000_000),
		WithUseSSL(false),
	})
	assert.Equal(t, 4, cfg.FinalizeConcurrency)
	assert.Equal(t, int32(10), cfg.PageSize)
	assert.Equal(t, int64(8_000_000), cfg.MinPartSize)
	assert.False(t, cfg.UseSSL)
}

func TestOperationOptions(t *testing.T) {
	assert.Equal(t, s3types.OperationConfig{}, operationConfig(nil))
	assert.Equal(t,
		s3types.OperationConfig{DryRun: true, Cleanup: true},
		operationConfig([]s3types.OperationOption{WithDryRun(true), WithCleanup(true)}),
	)
}

func TestNewWithClient(t *testing.T) {
	client := NewWithClient(&testutil.MockS3Client{}, WithPageSize(5))
	assert.IsType(t, &store.S3Store{}, client.store)
	assert.Equal(t, int32(5), client.Config().PageSize)

	// The mock lists nothing, so the run is a no-op.
	result, err := client.Concat(context.Background(), "test-bucket", "", `(.*)`, "all")
	require.NoError(t, err)
	assert.Empty(t, result.Mappings)
	assert.Empty(t, result.Targets)
}
