package canvas

import (
	"context"
	"log/slog"

	"github.com/gogpu/gg"
	"github.com/sirupsen/logrus"
)

// RouteBackendLogs sends the drawing backend's slog output to logrus.
func RouteBackendLogs() {
	gg.SetLogger(slog.New(&logrusHandler{entry: logrus.WithField("component", "gg")}))
}

// logrusHandler is a slog.Handler writing through a logrus entry.
type logrusHandler struct {
	entry *logrus.Entry
	group string
}

func (h *logrusHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.entry.Logger.IsLevelEnabled(logrusLevel(level))
}

func (h *logrusHandler) Handle(_ context.Context, r slog.Record) error {
	fields := logrus.Fields{}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.key(a.Key)] = a.Value.Any()
		return true
	})
	h.entry.WithFields(fields).Log(logrusLevel(r.Level), r.Message)
	return nil
}

func (h *logrusHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := logrus.Fields{}
	for _, a := range attrs {
		fields[h.key(a.Key)] = a.Value.Any()
	}
	return &logrusHandler{entry: h.entry.WithFields(fields), group: h.group}
}

func (h *logrusHandler) WithGroup(name string) slog.Handler {
	return &logrusHandler{entry: h.entry, group: h.key(name)}
}

func (h *logrusHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

func logrusLevel(l slog.Level) logrus.Level {
	switch {
	case l >= slog.LevelError:
		return logrus.ErrorLevel
	case l >= slog.LevelWarn:
		return logrus.WarnLevel
	case l >= slog.LevelInfo:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}
