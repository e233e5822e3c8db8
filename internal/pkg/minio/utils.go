package minio

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

var bucketNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9.\-]{1,61}[a-z0-9]$`)

// ValidateBucketName validates a bucket name according to S3 naming rules
func ValidateBucketName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidBucketName)
	}
	if !bucketNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q must be 3-63 lowercase letters, digits, dots or hyphens", ErrInvalidBucketName, name)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q contains consecutive dots", ErrInvalidBucketName, name)
	}
	if net.ParseIP(name) != nil {
		return fmt.Errorf("%w: %q is formatted as an IP address", ErrInvalidBucketName, name)
	}
	if strings.HasPrefix(name, "xn--") {
		return fmt.Errorf("%w: %q uses a reserved prefix", ErrInvalidBucketName, name)
	}
	return nil
}
