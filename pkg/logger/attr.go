package logger

import (
	"log/slog"
	"time"
)

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// ExaminationID records an examination id under the key "examination_id".
// If id is empty, it returns an empty Attr.
func ExaminationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("examination_id", id)
}

// JobID records a batch job id under the key "job_id".
func JobID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("job_id", id)
}

// Err records err under the key "error".
// If err is nil, it returns an empty Attr.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Duration records an elapsed time under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Ailments records an ailment count under the key "ailments".
func Ailments(n int) slog.Attr {
	return slog.Int("ailments", n)
}

// Source records the input an examination came from under the key "source".
func Source(name string) slog.Attr {
	return slog.String("source", name)
}
