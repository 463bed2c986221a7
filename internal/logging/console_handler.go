package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

type consoleHandler struct {
	mu     sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
	groups []string
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	return &consoleHandler{writer: w, level: lvl}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var sb strings.Builder
	sb.WriteString(timestamp.Format("15:04:05"))
	sb.WriteByte(' ')
	sb.WriteString(levelLabel(record.Level))
	sb.WriteByte(' ')
	sb.WriteString(strings.TrimSpace(record.Message))

	writeAttr := func(groups []string, attr slog.Attr) {
		attr.Value = attr.Value.Resolve()
		if attr.Equal(slog.Attr{}) {
			return
		}
		key := attr.Key
		if len(groups) > 0 {
			key = strings.Join(groups, ".") + "." + key
		}
		sb.WriteByte(' ')
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(formatValue(attr.Value))
	}
	// Handler attrs had their keys qualified when attached.
	for _, attr := range h.attrs {
		writeAttr(nil, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(h.groups, attr)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// Qualify keys with the groups open right now; groups opened later must
	// not prefix these attrs.
	qualified := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		attr.Value = attr.Value.Resolve()
		if len(h.groups) > 0 && attr.Key != "" {
			attr.Key = strings.Join(h.groups, ".") + "." + attr.Key
		}
		qualified = append(qualified, attr)
	}
	clone := &consoleHandler{
		writer: h.writer,
		level:  h.level,
		attrs:  append(append([]slog.Attr(nil), h.attrs...), qualified...),
		groups: h.groups,
	}
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := &consoleHandler{
		writer: h.writer,
		level:  h.level,
		attrs:  h.attrs,
		groups: append(append([]string(nil), h.groups...), name),
	}
	return clone
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN "
	case level >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

func formatValue(v slog.Value) string {
	s := v.String()
	if strings.ContainsAny(s, " \t") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
