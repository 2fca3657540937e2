// Package obs carries the runtime's ambient observability stack:
// structured logging, Prometheus metrics, and OpenTelemetry tracing.
package obs

import (
	"io"
	"log/slog"
)

// skillLogPrefix marks every skill-originated log line on stderr, per
// the wire contract: "standard error is reserved for log lines prefixed
// [skill] ".
const skillLogPrefix = "[skill] "

// NewLogger builds the runtime's own structured logger, writing to w
// (conventionally os.Stderr).
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// SkillLog writes one skill-originated log line to w, in the prefixed
// form the host distinguishes from structured runtime logs.
func SkillLog(w io.Writer, message string) {
	io.WriteString(w, skillLogPrefix+message+"\n")
}
