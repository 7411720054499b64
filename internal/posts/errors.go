package posts

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidation   = "VALIDATION_ERROR"
	TextCodeConflict     = "CONFLICT_ERROR"
	TextCodeStorage      = "STORAGE_ERROR"
	TextCodeCorruptIndex = "CORRUPT_INDEX"
)

// Kind names the machine distinguishable failure classes of a publish.
type Kind string

const (
	KindUnknown      Kind = ""
	KindValidation   Kind = "ValidationError"
	KindConflict     Kind = "ConflictError"
	KindStorage      Kind = "StorageError"
	KindCorruptIndex Kind = "CorruptIndexError"
)

// NewValidationError reports missing or malformed input. No state is mutated
// when it is returned.
func NewValidationError(message string) error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(TextCodeValidation)
}

// NewConflictError reports that a post with slug is already in the index.
func NewConflictError(slug string) error {
	return goerrors.New("post \""+slug+"\" already exists", goerrors.CategoryConflict).
		WithTextCode(TextCodeConflict)
}

// NewStorageError wraps a failed durable write or read. Earlier steps of the
// same publish may already have written files.
func NewStorageError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "storage: "+operation+" failed").
		WithTextCode(TextCodeStorage)
}

func newCorruptIndexError(err error, path string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "post index "+path+" is corrupt").
		WithTextCode(TextCodeCorruptIndex)
}

// KindOf classifies err. Errors that did not originate from this package, or
// from a validation layer tagged with the validation category, are KindUnknown.
func KindOf(err error) Kind {
	var gerr *goerrors.Error
	if err == nil || !errors.As(err, &gerr) {
		return KindUnknown
	}
	switch gerr.TextCode {
	case TextCodeValidation:
		return KindValidation
	case TextCodeConflict:
		return KindConflict
	case TextCodeStorage:
		return KindStorage
	case TextCodeCorruptIndex:
		return KindCorruptIndex
	}
	switch {
	case goerrors.IsCategory(err, goerrors.CategoryValidation):
		return KindValidation
	case goerrors.IsCategory(err, goerrors.CategoryConflict):
		return KindConflict
	}
	return KindUnknown
}
