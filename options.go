package s3utils

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// WithBackend selects the client library used to reach the store.
// Default is BackendAWS.
func WithBackend(backend s3types.Backend) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Backend = backend
	}
}

// WithRegion sets the region for S3 operations.
// If not specified, uses the region from the credential chain.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithCredentials sets static credentials instead of the default chain.
func WithCredentials(accessKey, secretKey string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.AccessKey = accessKey
		c.SecretKey = secretKey
	}
}

// WithUseSSL controls TLS for endpoints given without a scheme.
// Only the MinIO backend reads it. Default is true.
func WithUseSSL(useSSL bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.UseSSL = useSSL
	}
}

// WithAWSConfig provides a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithTimeout sets the HTTP timeout for individual requests.
// Default is no timeout (0).
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithLogger sets the logger that receives progress and failure messages.
// Default is a disabled logger.
func WithLogger(logger zerolog.Logger) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Logger = logger
	}
}

// WithFinalizeConcurrency sets how many target uploads are finalized at once.
// Default is 1.
func WithFinalizeConcurrency(concurrency int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if concurrency > 0 {
			c.FinalizeConcurrency = concurrency
		}
	}
}

// WithPageSize sets the number of keys requested per listing page.
// Values outside 1..1000 are ignored.
func WithPageSize(pageSize int32) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if pageSize > 0 && pageSize <= s3types.DefaultPageSize {
			c.PageSize = pageSize
		}
	}
}

// WithMinPartSize raises the smallest source size accepted by concat.
// Values below s3types.MinPartSize are ignored.
func WithMinPartSize(size int64) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if size >= s3types.MinPartSize {
			c.MinPartSize = size
		}
	}
}

// WithDryRun logs the planned work without issuing mutating calls.
func WithDryRun(dryRun bool) s3types.OperationOption {
	return func(c *s3types.OperationConfig) {
		c.DryRun = dryRun
	}
}

// WithCleanup deletes the sources of every completed concat target.
func WithCleanup(cleanup bool) s3types.OperationOption {
	return func(c *s3types.OperationConfig) {
		c.Cleanup = cleanup
	}
}

func operationConfig(opts []s3types.OperationOption) s3types.OperationConfig {
	var cfg s3types.OperationConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
