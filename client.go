package s3utils

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/store"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// defaultRegion is used when neither the options nor the environment name one.
const defaultRegion = "us-east-1"

// Client runs bulk operations against a single object store.
type Client struct {
	// store performs the object store calls
	store store.Store

	// config holds the resolved client configuration
	config s3types.ClientConfig

	logger zerolog.Logger
}

func defaultConfig() s3types.ClientConfig {
	return s3types.ClientConfig{
		Backend:             s3types.BackendAWS,
		UseSSL:              true,
		FinalizeConcurrency: 1,
		PageSize:            s3types.DefaultPageSize,
		MinPartSize:         s3types.MinPartSize,
		Logger:              zerolog.Nop(),
	}
}

func resolve(opts []s3types.Option) s3types.ClientConfig {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// New creates a client for the configured backend. The AWS backend loads
// credentials with the default credential chain unless explicit keys are
// given. Requests are never retried.
//
// Example:
//
//	client, err := s3utils.New(ctx,
//	    s3utils.WithEndpoint("http://localhost:9000"),
//	    s3utils.WithForcePathStyle(true),
//	)
func New(ctx context.Context, opts ...s3types.Option) (*Client, error) {
	cfg := resolve(opts)

	switch cfg.Backend {
	case s3types.BackendAWS, "":
		s3Client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return newClient(store.NewS3Store(s3Client), cfg), nil
	case s3types.BackendMinio:
		core, err := store.NewMinioCore(store.MinioConfig{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return newClient(store.NewMinioStore(core), cfg), nil
	default:
		return nil, errors.NewError("client initialization", errors.ErrInvalidInput).
			WithMessage("unknown backend " + string(cfg.Backend))
	}
}

// NewWithClient creates a client over a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, opts ...s3types.Option) *Client {
	return newClient(store.NewS3Store(s3Client), resolve(opts))
}

// NewWithStore creates a client over an arbitrary store.
func NewWithStore(st store.Store, opts ...s3types.Option) *Client {
	return newClient(st, resolve(opts))
}

func newClient(st store.Store, cfg s3types.ClientConfig) *Client {
	return &Client{
		store:  st,
		config: cfg,
		logger: cfg.Logger,
	}
}

func newS3Client(ctx context.Context, clientCfg s3types.ClientConfig) (*s3.Client, error) {
	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if clientCfg.AccessKey != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(clientCfg.AccessKey, clientCfg.SecretKey, ""),
			))
		}

		cfg, err = config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	// A failed call is reported once, never replayed.
	cfg.RetryMaxAttempts = 1

	var s3Opts []func(*s3.Options)

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return s3.NewFromConfig(cfg, s3Opts...), nil
}

// Config returns a copy of the resolved client configuration.
func (c *Client) Config() s3types.ClientConfig {
	return c.config
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}
