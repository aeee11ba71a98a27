package connect

import (
	"context"
	"io"
	"os"
)

type logWriterKey struct{}

// WithLogWriter returns a new context carrying the given io.Writer for
// the manager's own diagnostics log (not the traced event stream itself).
func WithLogWriter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, logWriterKey{}, w)
}

// LogWriter returns an io.Writer for diagnostics output. Outside of a
// context carrying WithLogWriter, returns os.Stdout.
//
// The returned writer works directly with Go's standard logging:
//
//	slog.New(slog.NewTextHandler(connect.LogWriter(ctx), nil))
//	log.New(connect.LogWriter(ctx), "", 0)
//	log.SetOutput(connect.LogWriter(ctx))
func LogWriter(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(logWriterKey{}).(io.Writer); ok && w != nil {
		return w
	}
	return os.Stdout
}
