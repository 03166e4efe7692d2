// Package util provides utility functions for the scanner.
//
//revive:disable-next-line:var-naming
package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned by ValidateVersion for versions with non-numeric segments
var ErrInvalidVersion = errors.New("invalid version")

// CompareVersions compares two dot-separated numeric versions and returns -1, 0 or 1.
// Missing positions count as 0, so "1.2" and "1.2.0" are equal.
// Segments that are not unsigned integers also count as 0; use ValidateVersion
// to reject them up front.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}

	for i := 0; i < n; i++ {
		x := versionSegment(as, i)
		y := versionSegment(bs, i)
		if x < y {
			return -1
		}
		if x > y {
			return 1
		}
	}
	return 0
}

func versionSegment(parts []string, i int) uint64 {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ValidateVersion reports whether every segment of the version is numeric.
// CompareVersions silently ranks a malformed segment as 0, which can misorder
// fork points, so callers that own the input check it here first.
func ValidateVersion(version string) error {
	if IsEmpty(version) {
		return fmt.Errorf("%w: empty version", ErrInvalidVersion)
	}
	for _, seg := range strings.Split(version, ".") {
		if _, err := strconv.ParseUint(strings.TrimSpace(seg), 10, 64); err != nil {
			return fmt.Errorf("%w %q: segment %q is not numeric", ErrInvalidVersion, version, seg)
		}
	}
	return nil
}

// MaxVersion returns the greater of two versions, keeping current on ties
func MaxVersion(current, candidate string) string {
	if CompareVersions(candidate, current) > 0 {
		return candidate
	}
	return current
}
