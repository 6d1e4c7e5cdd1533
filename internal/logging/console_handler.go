package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fatih/color"
)

// consoleHandler renders records as single human-oriented lines:
//
//	15:04:05 INFO  transcript saved path=... took=3.2s
//
// Attrs are appended as key=value pairs after the message.
type consoleHandler struct {
	mu     sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
	groups []string

	debugTag, infoTag, warnTag, errorTag string
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, forceColor bool) slog.Handler {
	h := &consoleHandler{writer: w, level: lvl}

	paint := func(c *color.Color, s string) string {
		if forceColor {
			c.EnableColor()
		}
		return c.Sprint(s)
	}
	h.debugTag = paint(color.New(color.FgHiBlack), "DEBUG")
	h.infoTag = paint(color.New(color.FgCyan), "INFO ")
	h.warnTag = paint(color.New(color.FgYellow), "WARN ")
	h.errorTag = paint(color.New(color.FgRed, color.Bold), "ERROR")
	return h
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var buf bytes.Buffer
	buf.Grow(128)
	buf.WriteString(timestamp.Format("15:04:05"))
	buf.WriteByte(' ')
	buf.WriteString(h.levelTag(record.Level))
	buf.WriteByte(' ')
	buf.WriteString(record.Message)

	for _, attr := range h.attrs {
		writeAttr(&buf, attr) // already qualified by WithAttrs
	}
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&buf, h.qualify(attr))
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func writeAttr(buf *bytes.Buffer, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(buf, " %s=%v", attr.Key, attr.Value.Resolve())
}

// qualify prefixes an attr key with the handler's open groups.
func (h *consoleHandler) qualify(attr slog.Attr) slog.Attr {
	if len(h.groups) == 0 || attr.Equal(slog.Attr{}) {
		return attr
	}
	attr.Key = joinGroups(h.groups) + "." + attr.Key
	return attr
}

func (h *consoleHandler) levelTag(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return h.debugTag
	case level < slog.LevelWarn:
		return h.infoTag
	case level < slog.LevelError:
		return h.warnTag
	default:
		return h.errorTag
	}
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	for _, attr := range attrs {
		clone.attrs = append(clone.attrs, h.qualify(attr))
	}
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	return &consoleHandler{
		writer:   h.writer,
		level:    h.level,
		attrs:    append([]slog.Attr(nil), h.attrs...),
		groups:   append([]string(nil), h.groups...),
		debugTag: h.debugTag,
		infoTag:  h.infoTag,
		warnTag:  h.warnTag,
		errorTag: h.errorTag,
	}
}

func joinGroups(groups []string) string {
	out := groups[0]
	for _, g := range groups[1:] {
		out += "." + g
	}
	return out
}
