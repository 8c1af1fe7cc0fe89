package s3utils_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/rs/zerolog"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils"
	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3utils/s3types"
)

// ExampleClient_Concat merges hourly log objects into one object per day and
// removes the hourly objects once their day is complete.
func ExampleClient_Concat() {
	ctx := context.Background()

	client, err := s3utils.New(ctx,
		s3utils.WithRegion("eu-west-1"),
		s3utils.WithLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})),
	)
	if err != nil {
		log.Fatal(err)
	}

	result, err := client.Concat(ctx, "my-bucket", "logs",
		`^logs/(\d{4}-\d{2}-\d{2})-\d{2}\.log$`, "daily/$1.log",
		s3utils.WithCleanup(true),
	)
	if errors.Is(err, s3errors.ErrObjectTooSmall) {
		log.Fatal("every matching source must be at least 5MB")
	}
	if err != nil {
		log.Fatal(err)
	}

	for _, target := range result.Targets {
		if target.Status == s3types.TargetAborted {
			fmt.Printf("%s was aborted: %v\n", target.Key, target.Err)
			continue
		}
		fmt.Printf("%s: %d parts\n", target.Key, target.Parts)
	}
}

// ExampleClient_Rename previews a rename against a MinIO server.
func ExampleClient_Rename() {
	ctx := context.Background()

	client, err := s3utils.New(ctx,
		s3utils.WithBackend(s3types.BackendMinio),
		s3utils.WithEndpoint("http://localhost:9000"),
		s3utils.WithCredentials("minioadmin", "minioadmin"),
	)
	if err != nil {
		log.Fatal(err)
	}

	result, err := client.Rename(ctx, "my-bucket", "uploads",
		`^uploads/(.*)\.jpeg$`, "uploads/$1.jpg",
		s3utils.WithDryRun(true),
	)
	if err != nil {
		log.Fatal(err)
	}

	for _, m := range result.Renamed {
		fmt.Printf("%s -> %s\n", m.Source, m.Target)
	}
}
