// Package report gathers metadata about the objects under a bucket prefix:
// counts, storage, file size bounds, extensions and modification dates.
//
// Each metric registers every walked object and prints its own section as
// label=value pairs under a [section] header.
package report
