package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/logging"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

func (a *App) concatCommand() *cli.Command {
	return &cli.Command{
		Name:      "concat",
		Usage:     "concatenate matching objects into multipart uploads",
		ArgsUsage: "<bucket[/prefix]> <source-pattern> <target-pattern>",
		Flags: []cli.Flag{
			dryRunFlag(),
			quietFlag(),
			&cli.BoolFlag{
				Name:    "cleanup",
				Aliases: []string{"c"},
				Usage:   "delete the sources of every completed target",
			},
		},
		Action: func(c *cli.Context) error {
			s, err := a.open(c, 3)
			if err != nil {
				return err
			}
			defer s.client.Close()

			result, err := s.client.Concat(c.Context, s.bucket, s.prefix,
				c.Args().Get(1), c.Args().Get(2),
				s3utils.WithDryRun(c.Bool("dry-run")),
				s3utils.WithCleanup(c.Bool("cleanup")),
			)
			if err != nil {
				return err
			}

			completed := 0
			for _, t := range result.Targets {
				if t.Status == s3types.TargetCompleted {
					completed++
				}
			}
			s.logger.Debug().
				Int("mappings", len(result.Mappings)).
				Int("targets", len(result.Targets)).
				Int("completed", completed).
				Int("deleted", len(result.Deleted)).
				Int("failed_deletes", len(result.FailedDeletes)).
				Dur("duration", logging.Elapsed(result.Duration)).
				Msg("concat finished")
			return nil
		},
	}
}

func (a *App) renameCommand() *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "rename matching objects",
		ArgsUsage: "<bucket[/prefix]> <source-pattern> <target-pattern>",
		Flags: []cli.Flag{
			dryRunFlag(),
			quietFlag(),
		},
		Action: func(c *cli.Context) error {
			s, err := a.open(c, 3)
			if err != nil {
				return err
			}
			defer s.client.Close()

			result, err := s.client.Rename(c.Context, s.bucket, s.prefix,
				c.Args().Get(1), c.Args().Get(2),
				s3utils.WithDryRun(c.Bool("dry-run")),
			)
			if err != nil {
				return err
			}

			s.logger.Debug().
				Int("renamed", len(result.Renamed)).
				Dur("duration", logging.Elapsed(result.Duration)).
				Msg("rename finished")
			return nil
		},
	}
}

func (a *App) reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "print statistics about the objects under a prefix",
		ArgsUsage: "<bucket[/prefix]>",
		Action: func(c *cli.Context) error {
			s, err := a.open(c, 1)
			if err != nil {
				return err
			}
			defer s.client.Close()

			return s.client.Report(c.Context, s.bucket, s.prefix, a.Stdout)
		},
	}
}
