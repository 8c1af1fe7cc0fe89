// Package cli implements the s3-utils command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/config"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/logging"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// ClientFactory creates the client a command runs against.
type ClientFactory func(ctx context.Context, opts ...s3types.Option) (*s3utils.Client, error)

// App holds the process-wide dependencies of the command line.
type App struct {
	Stdout    io.Writer
	Stderr    io.Writer
	NewClient ClientFactory
}

// NewApp builds the urfave/cli application.
func (a *App) NewApp() *cli.App {
	newClient := a.NewClient
	if newClient == nil {
		newClient = s3utils.New
	}
	a.NewClient = newClient

	return &cli.App{
		Name:      "s3-utils",
		Usage:     "bulk rename, concatenate and inspect S3 objects",
		Writer:    a.Stdout,
		ErrWriter: a.Stderr,
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			a.concatCommand(),
			a.renameCommand(),
			a.reportCommand(),
		},
	}
}

// Run parses args and runs the selected command.
func (a *App) Run(ctx context.Context, args []string) error {
	app := a.NewApp()
	return app.RunContext(ctx, hoistFlags(app, args))
}

// hoistFlags moves the boolean flags of the selected command that follow its
// positional arguments in front of them, so "concat b src dst -c" parses like
// "concat -c b src dst". Everything after "--" is left alone.
func hoistFlags(app *cli.App, args []string) []string {
	i := 1
	for i < len(args) {
		arg := args[i]
		if arg == "--" || !strings.HasPrefix(arg, "-") {
			break
		}
		if takesValue(app.Flags, arg) {
			i++
		}
		i++
	}
	if i >= len(args) {
		return args
	}

	cmd := app.Command(args[i])
	if cmd == nil {
		return args
	}
	bools := boolFlagNames(cmd.Flags)

	out := slices.Clone(args[:i+1])
	var rest []string
	for j, arg := range args[i+1:] {
		if arg == "--" {
			rest = append(rest, args[i+1+j:]...)
			break
		}
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if strings.HasPrefix(arg, "-") && bools[name] {
			out = append(out, arg)
			continue
		}
		rest = append(rest, arg)
	}
	return append(out, rest...)
}

// takesValue reports whether arg names a non-boolean flag given without an
// inline "=value".
func takesValue(flags []cli.Flag, arg string) bool {
	name := strings.TrimLeft(arg, "-")
	if strings.Contains(name, "=") {
		return false
	}
	for _, f := range flags {
		if !slices.Contains(f.Names(), name) {
			continue
		}
		_, isBool := f.(*cli.BoolFlag)
		return !isBool
	}
	return false
}

func boolFlagNames(flags []cli.Flag) map[string]bool {
	names := make(map[string]bool)
	for _, f := range flags {
		if _, ok := f.(*cli.BoolFlag); !ok {
			continue
		}
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	return names
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "path to a YAML configuration file",
			EnvVars: []string{config.EnvPrefix + "_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "client library used to reach the store (aws or minio)",
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "custom S3-compatible endpoint URL",
		},
		&cli.StringFlag{
			Name:  "region",
			Usage: "region of the bucket",
		},
		&cli.BoolFlag{
			Name:  "path-style",
			Usage: "use path-style addressing",
		},
		&cli.StringFlag{
			Name:  "access-key",
			Usage: "static access key, the default credential chain is used when unset",
		},
		&cli.StringFlag{
			Name:  "secret-key",
			Usage: "static secret key",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colored log output",
		},
	}
}

func dryRunFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "dry-run",
		Aliases: []string{"d"},
		Usage:   "log the planned work without changing anything",
	}
}

func quietFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "only log errors",
	}
}

// session is the resolved state shared by every command action.
type session struct {
	client *s3utils.Client
	logger zerolog.Logger
	bucket string
	prefix string
}

// open loads configuration, applies the command line overrides and creates
// the client. The first argument is parsed as [s3://]bucket[/prefix].
func (a *App) open(c *cli.Context, wantArgs int) (*session, error) {
	if c.Args().Len() != wantArgs {
		return nil, fmt.Errorf("expected %d arguments, got %d", wantArgs, c.Args().Len())
	}

	bucket, prefix, err := validation.ParseBucketURI(c.Args().First())
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	override(c, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{
		Quiet:   c.Bool("quiet"),
		Verbose: c.Bool("verbose"),
		Level:   cfg.LogLevel,
		Stdout:  a.Stdout,
		Stderr:  a.Stderr,
		NoColor: c.Bool("no-color"),
	})

	client, err := a.NewClient(c.Context, clientOptions(cfg, logger)...)
	if err != nil {
		return nil, err
	}

	return &session{
		client: client,
		logger: logger,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// override applies the flags given on the command line over cfg.
func override(c *cli.Context, cfg *config.Config) {
	if c.IsSet("backend") {
		cfg.Backend = strings.ToLower(c.String("backend"))
	}
	if c.IsSet("endpoint") {
		cfg.Endpoint = c.String("endpoint")
	}
	if c.IsSet("region") {
		cfg.Region = c.String("region")
	}
	if c.IsSet("path-style") {
		cfg.PathStyle = c.Bool("path-style")
	}
	if c.IsSet("access-key") {
		cfg.AccessKey = c.String("access-key")
	}
	if c.IsSet("secret-key") {
		cfg.SecretKey = c.String("secret-key")
	}
}

func clientOptions(cfg *config.Config, logger zerolog.Logger) []s3types.Option {
	opts := []s3types.Option{
		s3utils.WithBackend(s3types.Backend(cfg.Backend)),
		s3utils.WithRegion(cfg.Region),
		s3utils.WithEndpoint(cfg.Endpoint),
		s3utils.WithForcePathStyle(cfg.PathStyle),
		s3utils.WithUseSSL(cfg.UseSSL),
		s3utils.WithTimeout(cfg.Timeout),
		s3utils.WithFinalizeConcurrency(cfg.FinalizeConcurrency),
		s3utils.WithPageSize(int32(cfg.PageSize)),
		s3utils.WithLogger(logger),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, s3utils.WithCredentials(cfg.AccessKey, cfg.SecretKey))
	}
	return opts
}
