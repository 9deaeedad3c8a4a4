// Package telemetry provides the Logger glue both process entrypoints use,
// wired to goa.design/clue/log the way a Logger interface gets wired to
// Clue elsewhere in this codebase. The Metrics/Tracer
// counterparts from that interface aren't reproduced here: neither
// cmd/worker nor cmd/agent emits custom metrics or spans of its own today
// (OTEL tracing, where enabled, is wired directly into the Temporal client
// via go.temporal.io/sdk/contrib/opentelemetry in internal/curator/durable),
// so the narrower Logger-only surface avoids carrying two unused interfaces.
package telemetry

import (
	"context"

	"goa.design/clue/log"
)

// Logger captures structured logging. The interface is intentionally
// small so activities/workflows that need to log can accept it without
// depending on clue directly, matching runtime/agents/telemetry.Logger.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Warn(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
}

// ClueLogger delegates to goa.design/clue/log, reading format/debug
// settings from the context installed by Bootstrap.
type ClueLogger struct{}

func NewClueLogger() Logger { return ClueLogger{} }

func (ClueLogger) Debug(ctx context.Context, msg string, keyvals ...any) {
	log.Debug(ctx, fields(msg, keyvals)...)
}

func (ClueLogger) Info(ctx context.Context, msg string, keyvals ...any) {
	log.Info(ctx, fields(msg, keyvals)...)
}

func (ClueLogger) Warn(ctx context.Context, msg string, keyvals ...any) {
	log.Warn(ctx, fields(msg, keyvals)...)
}

func (ClueLogger) Error(ctx context.Context, msg string, keyvals ...any) {
	log.Error(ctx, nil, fields(msg, keyvals)...)
}

func fields(msg string, keyvals []any) []log.Fielder {
	fielders := []log.Fielder{log.KV{K: "msg", V: msg}}
	for i := 0; i+1 < len(keyvals); i += 2 {
		k, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		fielders = append(fielders, log.KV{K: k, V: keyvals[i+1]})
	}
	return fielders
}

// Bootstrap installs a clue logger on ctx, picking JSON format for
// non-interactive environments (container logs) and terminal format for
// a developer's TTY, matching example/cmd/assistant/main.go's setup.
func Bootstrap(ctx context.Context, debug bool) context.Context {
	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx = log.Context(ctx, log.WithFormat(format))
	if debug {
		ctx = log.Context(ctx, log.WithDebug())
	}
	return ctx
}
