// Package segment recognises transport-stream segment paths and extracts the
// sequence number embedded in their file names.
package segment

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Extension is the file extension of a transport-stream segment.
const Extension = ".ts"

// Matches ".../<anything>_<digits>.ts". The greedy prefix means only the last
// underscore-delimited digit run before the extension is captured.
var numberPattern = regexp.MustCompile(`^.*/.*_(\d+)\.ts$`)

// IsSegment reports whether path names a segment file.
func IsSegment(path string) bool {
	return strings.HasSuffix(path, Extension)
}

var (
	ErrNoNumber   = errors.New("no segment number in path")
	ErrOutOfRange = errors.New("segment number out of range")
)

// Number returns the sequence number of the segment named by path. It returns
// ErrNoNumber when the path doesn't follow the naming convention and
// ErrOutOfRange when the digit run doesn't fit in 32 bits.
func Number(path string) (uint32, error) {
	m := numberPattern.FindStringSubmatch(path)
	if m == nil {
		return 0, ErrNoNumber
	}

	v, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, m[1])
	}
	return uint32(v), nil
}
