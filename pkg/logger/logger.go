// Package logger provides the colored slog logger used across sitegraph.
//
// Output is a plain text line per record with ANSI colors: errors red,
// warnings yellow, and persistence messages green so database writes stand
// out when tailing ingestion runs. Colors are disabled automatically when
// the writer is not a terminal.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// ANSI escape sequences
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

// Handler is a slog.Handler writing colored single-line text records.
type Handler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
	color bool
	attrs []slog.Attr
	group string
}

// NewHandler creates a Handler writing to w at the given level.
func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	return &Handler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
		color: color,
	}
}

// NewDefaultLogger creates a logger writing colored text to stderr.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewHandler(os.Stderr, level))
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	color := h.recordColor(r)
	if color != "" {
		b.WriteString(color)
	}

	b.WriteString(r.Time.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)

	writeAttr := func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, a.Value.Any())
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)

	if color != "" {
		b.WriteString(colorReset)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// recordColor picks the line color: errors red, warnings yellow, database
// persistence messages green.
func (h *Handler) recordColor(r slog.Record) string {
	if !h.color {
		return ""
	}
	switch {
	case r.Level >= slog.LevelError:
		return colorRed
	case r.Level >= slog.LevelWarn:
		return colorYellow
	case strings.Contains(strings.ToLower(r.Message), "persist"):
		return colorGreen
	}
	return ""
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}
