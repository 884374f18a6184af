// Package logging constructs the process-wide structured logger.
package logging

import (
	"github.com/hashicorp/go-hclog"
)

// New returns the root logger. Components derive named subloggers from it
// via Named.
func New(level string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "rendercut",
		Level: hclog.LevelFromString(level),
	})
}
