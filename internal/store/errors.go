package store

import (
	"context"
	"errors"

	apperrors "event-insights-workers/internal/common/errors"
)

// JobError translates a storage failure into the error reported to the
// engine. Not-found is left to the caller, which knows what was missing.
func JobError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsStandardError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ErrInvalidID):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrSearchFailed) && errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewSearchTimeoutError(op)
	case errors.Is(err, ErrSearchFailed):
		return apperrors.NewSearchQueryFailedError(op, err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewQueryTimeoutError(op)
	default:
		return apperrors.NewQueryExecutionFailedError(op, err)
	}
}
