// Package logger builds the structured slog loggers used by the catalog core.
//
// Development runs get a colored single-line handler; production runs get
// JSON. Components receive a *slog.Logger scoped with a "component" attr.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	domainerrors "github.com/glazepal/glazepal/internal/errors"
)

const (
	formatJSON   = "json"
	formatPretty = "pretty"
)

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorGray    = "\033[37m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
)

// Logger wraps slog.Logger with catalog-specific helpers.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Writer      io.Writer
	Format      string
	Environment string
	Level       slog.Level
	AddSource   bool
	NoColor     bool
}

// New creates a logger from cfg. An empty Format picks JSON in production
// and the pretty handler everywhere else.
func New(cfg Config) *Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.Format == "" {
		if cfg.Environment == "production" {
			cfg.Format = formatJSON
		} else {
			cfg.Format = formatPretty
		}
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == formatJSON {
		handler = slog.NewJSONHandler(cfg.Writer, opts)
	} else {
		ph := NewPrettyHandler(cfg.Writer, opts)
		ph.noColor = cfg.NoColor
		handler = ph
	}

	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Used by tests and by
// components constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// ParseLevel converts a string to slog.Level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *slog.Logger {
	return l.With(slog.String("component", name))
}

// Err returns an attribute group describing err. Coded domain errors also
// carry their code so failed edits can be grepped by category.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) {
		return slog.Group("error",
			slog.String("code", string(domainErr.Code)),
			slog.String("message", err.Error()),
		)
	}
	return slog.String("error", err.Error())
}

// PrettyHandler writes one colored line per record:
//
//	15:04:05 INF message key=value group.key=value
type PrettyHandler struct {
	opts    *slog.HandlerOptions
	mu      *sync.Mutex
	writer  io.Writer
	attrs   []slog.Attr
	prefix  string
	noColor bool
}

// NewPrettyHandler creates a new pretty handler.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{
		opts:   opts,
		mu:     &sync.Mutex{},
		writer: w,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes the log record.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)

	buf = h.colored(buf, colorDim, r.Time.Format("15:04:05"))
	buf = append(buf, ' ')

	levelStr, levelColor := formatLevel(r.Level)
	buf = h.colored(buf, levelColor, levelStr)
	buf = append(buf, ' ')

	if h.opts.AddSource && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		buf = h.colored(buf, colorDim, filepath.Base(f.File)+":"+strconv.Itoa(f.Line))
		buf = append(buf, ' ')
	}

	buf = h.colored(buf, colorBold, r.Message)

	pairs := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		pairs = appendAttr(pairs, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		pairs = appendAttr(pairs, h.prefix, a)
		return true
	})
	if len(pairs) > 0 {
		buf = append(buf, ' ')
		buf = h.colored(buf, colorCyan, strings.Join(pairs, " "))
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf)
	return err
}

// WithAttrs returns a new handler with additional attributes.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return next
}

// WithGroup returns a new handler whose subsequent attributes are
// qualified with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix = h.prefix + name + "."
	return next
}

func (h *PrettyHandler) clone() *PrettyHandler {
	attrs := make([]slog.Attr, len(h.attrs))
	copy(attrs, h.attrs)
	return &PrettyHandler{
		opts:    h.opts,
		mu:      h.mu,
		writer:  h.writer,
		attrs:   attrs,
		prefix:  h.prefix,
		noColor: h.noColor,
	}
}

func (h *PrettyHandler) colored(buf []byte, color, s string) []byte {
	if h.noColor {
		return append(buf, s...)
	}
	buf = append(buf, color...)
	buf = append(buf, s...)
	return append(buf, colorReset...)
}

// appendAttr flattens groups into dotted keys.
func appendAttr(pairs []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return pairs
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			pairs = appendAttr(pairs, inner, ga)
		}
		return pairs
	}
	return append(pairs, prefix+a.Key+"="+formatValue(a.Value))
}

func formatLevel(level slog.Level) (levelStr, levelColor string) {
	switch level {
	case slog.LevelDebug:
		return "DBG", colorMagenta
	case slog.LevelInfo:
		return "INF", colorGreen
	case slog.LevelWarn:
		return "WRN", colorYellow
	case slog.LevelError:
		return "ERR", colorRed
	default:
		return level.String(), colorGray
	}
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindString:
		s := v.String()
		if strings.ContainsAny(s, " \t\"=") {
			return strconv.Quote(s)
		}
		return s
	default:
		return v.String()
	}
}
