package models

import (
	"encoding/hex"
	"fmt"
)

// JobID is the canonical job identifier shared by the job tracker and the
// execution engine. The wire form is a 24-character lowercase hex string.
type JobID string

const jobIDLength = 24

// ParseJobID validates s and returns it as a JobID. It fails with
// ErrInvalidIdentifier when s is not a 24-character hex string.
func ParseJobID(s string) (JobID, error) {
	if len(s) != jobIDLength {
		return "", fmt.Errorf("%w: %q must be %d characters", ErrInvalidIdentifier, s, jobIDLength)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("%w: %q is not hexadecimal", ErrInvalidIdentifier, s)
	}
	return JobID(s), nil
}

// IsValidJobID reports whether s parses as a legal job identifier.
func IsValidJobID(s string) bool {
	_, err := ParseJobID(s)
	return err == nil
}

// String returns the 24-character hex wire form.
func (id JobID) String() string {
	return string(id)
}
