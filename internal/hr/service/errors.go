package service

import (
	"errors"
	"strings"

	dErrors "employeeapp/pkg/domain-errors"
	"employeeapp/pkg/platform/sentinel"
)

// translate maps store sentinels to domain errors. entity names the record
// in user-facing messages ("employee", "department").
func translate(err error, entity string, op string) error {
	if err == nil {
		return nil
	}
	if _, coded := dErrors.As(err); coded {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, capitalize(entity)+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "email is already in use")
	case errors.Is(err, sentinel.ErrInvalidReference):
		return dErrors.Wrap(err, dErrors.CodeValidation, "department does not exist")
	case errors.Is(err, sentinel.ErrInvalidValue):
		return dErrors.Wrap(err, dErrors.CodeValidation, capitalize(entity)+" has a value outside the allowed range")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op+" "+entity)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
