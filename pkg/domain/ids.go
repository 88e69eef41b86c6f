package domain

import (
	"strconv"
	"strings"

	dErrors "employeeapp/pkg/domain-errors"
)

// RecordID identifies an employee or department row.
type RecordID int64

func (id RecordID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// IsZero reports whether the id is unset.
func (id RecordID) IsZero() bool {
	return id == 0
}

// ParseRecordID parses a positive decimal id from a path segment.
func ParseRecordID(s string) (RecordID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "id must be a number")
	}
	if n <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "id must be positive")
	}
	return RecordID(n), nil
}
