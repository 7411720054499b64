package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeInvalidMessage  = "INVALID_SUBMISSION"
	codeCanceled        = "SUBMISSION_CANCELED"
	codeTimedOut        = "SUBMISSION_TIMED_OUT"
	codeExecutionFailed = "SUBMISSION_FAILED"
)

// classify tags err with a category and text code for the stage it came
// from. Errors already carrying a go-errors category are returned as is, so
// validation, conflict and storage errors from the publish pipeline reach the
// HTTP and CLI layers unchanged.
func classify(err error, validating bool) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	category, code, message := goerrors.CategoryCommand, codeExecutionFailed, "submission could not be processed"
	switch {
	case validating:
		category, code, message = goerrors.CategoryValidation, codeInvalidMessage, "submission is invalid"
	case errors.Is(err, context.DeadlineExceeded):
		code, message = codeTimedOut, "submission timed out"
	case errors.Is(err, context.Canceled):
		code, message = codeCanceled, "submission was canceled"
	}
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}
