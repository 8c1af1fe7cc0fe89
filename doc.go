// Package s3utils provides bulk object utilities for S3 and S3-compatible
// stores.
//
// Every operation works on the objects below a bucket prefix whose keys match
// a regular expression. The target key of each object is derived by
// substituting the match into a replacement template.
//
// Key features:
//   - Concat: merge matching objects into multipart uploads with server-side
//     part copies, optionally removing the sources afterwards
//   - Rename: copy each matching object to its derived key, then delete it
//   - Report: summary statistics for everything under a prefix
//   - Dry runs that issue no mutating calls
//   - AWS SDK v2 and MinIO backends
//
// Example usage:
//
//	client, err := s3utils.New(ctx, s3utils.WithRegion("eu-west-1"))
//	if err != nil {
//	    return err
//	}
//
//	// Merge all hourly logs of a day into one object per day
//	result, err := client.Concat(ctx, "my-bucket", "logs",
//	    `^logs/(\d{4}-\d{2}-\d{2})-\d{2}\.log$`, "daily/$1.log",
//	    s3utils.WithCleanup(true))
//	if err != nil {
//	    return err
//	}
package s3utils
