package engine

// Logger receives best-effort diagnostic output from the executor.
// Implementations must be safe for concurrent use. The *log.Logger
// Printf method satisfies this interface via a thin adapter, and
// testing.T.Logf satisfies it directly.
type Logger interface {
	Logf(format string, args ...any)
}

// nopLogger discards all log output. Used when no Logger is configured.
type nopLogger struct{}

func (nopLogger) Logf(string, ...any) {}
