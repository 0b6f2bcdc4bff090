package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
)

// Redacted replaces the value of credential attributes.
const Redacted = "[REDACTED]"

// sensitiveKeys are attribute keys whose values never reach a log output.
var sensitiveKeys = map[string]bool{
	"api_key":       true,
	"apikey":        true,
	"access_token":  true,
	"accesstoken":   true,
	"token":         true,
	"authorization": true,
}

// SwappableHandler delegates to a slog.Handler that can be replaced at runtime,
// so loggers handed out before the log file is configured keep working
// afterwards. Handlers derived with WithAttrs or WithGroup follow later swaps.
// Credential attributes (API keys, access tokens) are redacted.
type SwappableHandler struct {
	target *atomic.Pointer[slog.Handler]
	derive []func(slog.Handler) slog.Handler
	cache  *atomic.Pointer[derived]
}

// derived caches the derived handler built for one swapped-in target.
type derived struct {
	target  *slog.Handler
	handler slog.Handler
}

// NewSwappableHandler creates a handler delegating to initial.
func NewSwappableHandler(initial slog.Handler) *SwappableHandler {
	sh := &SwappableHandler{
		target: new(atomic.Pointer[slog.Handler]),
		cache:  new(atomic.Pointer[derived]),
	}
	sh.target.Store(&initial)
	return sh
}

// Swap atomically replaces the underlying handler of sh and every handler
// derived from it.
func (sh *SwappableHandler) Swap(next slog.Handler) {
	sh.target.Store(&next)
}

func (sh *SwappableHandler) current() slog.Handler {
	target := sh.target.Load()
	if len(sh.derive) == 0 {
		return *target
	}
	if c := sh.cache.Load(); c != nil && c.target == target {
		return c.handler
	}

	h := *target
	for _, d := range sh.derive {
		h = d(h)
	}
	sh.cache.Store(&derived{target: target, handler: h})
	return h
}

func (sh *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return sh.current().Enabled(ctx, level)
}

func (sh *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(redact(a))
		return true
	})
	return sh.current().Handle(ctx, clean)
}

func (sh *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = redact(a)
	}
	return sh.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(clean) })
}

func (sh *SwappableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return sh
	}
	return sh.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (sh *SwappableHandler) with(d func(slog.Handler) slog.Handler) *SwappableHandler {
	derive := make([]func(slog.Handler) slog.Handler, len(sh.derive), len(sh.derive)+1)
	copy(derive, sh.derive)
	return &SwappableHandler{
		target: sh.target,
		derive: append(derive, d),
		cache:  new(atomic.Pointer[derived]),
	}
}

// redact masks credential attributes, descending into groups.
func redact(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, ga := range group {
			clean[i] = redact(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, Redacted)
	}
	return a
}
