package ingest

import "time"

// Logger is the logging interface used by the package.
// It is satisfied by *logging.Logger and *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Observer receives timing information from the scheduler.
// Implementations must be safe for concurrent use.
type Observer interface {
	// ObserveTable is called once per table after both families were fetched.
	ObserveTable(result TableResult, elapsed time.Duration)

	// ObserveBatch is called once per accepted batch.
	ObserveBatch(result BatchResult)

	// ObserveRejected is called when a batch is refused because one is running.
	ObserveRejected()
}

type noopObserver struct{}

func (noopObserver) ObserveTable(TableResult, time.Duration) {}
func (noopObserver) ObserveBatch(BatchResult)                {}
func (noopObserver) ObserveRejected()                        {}
