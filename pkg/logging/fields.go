package logging

import "log/slog"

// Domain identifiers

func Identity(id string) slog.Attr {
	return slog.String("identity", id)
}

func ConnID(id string) slog.Attr {
	return slog.String("conn_id", id)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func Outcome(o string) slog.Attr {
	return slog.String("outcome", o)
}

// Request / tracing

func TraceID(id string) slog.Attr {
	return slog.String("trace_id", id)
}

// Error handling

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
