package validation

import (
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/errors"
)

const scheme = "s3://"

// ParseBucketURI splits a bucket argument of the form [s3://]bucket[/prefix]
// into its bucket and prefix. A trailing slash is trimmed from the prefix and
// an empty prefix means the whole bucket.
func ParseBucketURI(arg string) (bucket, prefix string, err error) {
	trimmed := strings.TrimPrefix(arg, scheme)
	bucket, prefix, _ = strings.Cut(trimmed, "/")
	prefix = strings.TrimRight(prefix, "/")

	if err := ValidateLegacyBucketName(bucket); err != nil {
		return "", "", err
	}
	if err := ValidatePrefix(prefix); err != nil {
		return "", "", err
	}
	return bucket, prefix, nil
}

// ValidateLegacyBucketName accepts every name ValidateBucketName accepts plus
// the legacy us-east-1 names: 3 to 255 characters of letters, numbers, dots,
// hyphens and underscores.
func ValidateLegacyBucketName(bucket string) error {
	if ValidateBucketName(bucket) == nil {
		return nil
	}

	if len(bucket) < 3 || len(bucket) > 255 {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name must be between 3 and 255 characters long")
	}

	for _, char := range bucket {
		if !isValidLegacyBucketChar(char) {
			return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
				WithBucket(bucket).
				WithMessage("bucket name can only contain letters, numbers, dots, hyphens, and underscores")
		}
	}

	return nil
}

// ValidateBucketName validates that a bucket name is DNS-compliant according to AWS S3 rules.
// Returns ErrInvalidBucketName if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	if err := validateBucketNameBasics(bucket); err != nil {
		return err
	}

	if err := validateBucketNameCharacters(bucket); err != nil {
		return err
	}

	return validateBucketNameStructure(bucket)
}

// ValidatePrefix validates a listing prefix. Empty prefixes are allowed.
func ValidatePrefix(prefix string) error {
	if len(prefix) > 1024 {
		return errors.NewError("validatePrefix", errors.ErrInvalidObjectKey).
			WithKey(prefix).
			WithMessage("prefix cannot exceed 1024 characters")
	}

	if hasControlCharacters(prefix) {
		return errors.NewError("validatePrefix", errors.ErrInvalidObjectKey).
			WithKey(prefix).
			WithMessage("prefix cannot contain control characters")
	}

	return nil
}

// ValidatePatterns checks the source pattern and target template arguments.
// Compilation itself happens in the pattern package.
func ValidatePatterns(source, target string) error {
	if source == "" {
		return errors.NewError("validatePatterns", errors.ErrInvalidPattern).
			WithMessage("source pattern cannot be empty")
	}

	if hasControlCharacters(target) {
		return errors.NewError("validatePatterns", errors.ErrInvalidPattern).
			WithMessage("target pattern cannot contain control characters")
	}

	return nil
}

// validateBucketNameBasics validates basic bucket name requirements
func validateBucketNameBasics(bucket string) error {
	if bucket == "" {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name cannot be empty")
	}

	// Bucket names must be between 3 and 63 characters long
	if len(bucket) < 3 || len(bucket) > 63 {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name must be between 3 and 63 characters long")
	}

	return nil
}

// validateBucketNameCharacters validates allowed characters in bucket names
func validateBucketNameCharacters(bucket string) error {
	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
				WithBucket(bucket).
				WithMessage("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	return nil
}

// validateBucketNameStructure validates bucket name structural requirements
func validateBucketNameStructure(bucket string) error {
	first, last := bucket[0], bucket[len(bucket)-1]
	if first == '-' || first == '.' || last == '-' || last == '.' {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name cannot start or end with a hyphen or dot")
	}

	if isIPAddress(bucket) {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name cannot be formatted as an IP address")
	}

	if strings.Contains(bucket, "..") {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name cannot contain two adjacent periods")
	}

	return nil
}

// isValidBucketChar checks if a character is valid in a bucket name
func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

func isValidLegacyBucketChar(char rune) bool {
	return isValidBucketChar(char) || (char >= 'A' && char <= 'Z') || char == '_'
}

// isIPAddress checks if a string is formatted as an IPv4 address
func isIPAddress(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}

	for _, part := range parts {
		if part == "" || len(part) > 3 {
			return false
		}
		num := 0
		for _, char := range part {
			if char < '0' || char > '9' {
				return false
			}
			num = num*10 + int(char-'0')
		}
		if num > 255 {
			return false
		}
	}

	return true
}

// hasControlCharacters checks for control characters in s
func hasControlCharacters(s string) bool {
	for _, char := range s {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
