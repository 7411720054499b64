package commands

import (
	"strings"

	"github.com/goliatone/go-postpress/internal/logging"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// CommandLogger returns the logger for a command family such as "publish".
// Entries land under the postpress.commands.<family> module.
func CommandLogger(provider interfaces.LoggerProvider, family string) interfaces.Logger {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" {
		family = "core"
	}
	return logging.WithFields(
		logging.ModuleLogger(provider, "postpress.commands."+family),
		map[string]any{"component": "command"},
	)
}
