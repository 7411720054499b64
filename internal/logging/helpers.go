package logging

import (
	"maps"

	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// WithFields returns logger scoped with fields. Loggers without the
// FieldsLogger extension are returned unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	scoped, ok := logger.(interfaces.FieldsLogger)
	if !ok || len(fields) == 0 {
		return logger
	}
	return scoped.WithFields(maps.Clone(fields))
}
