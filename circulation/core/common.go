package core

import (
	"time"
)

// Alias types and small helpers instead of full value objects ...

// OccurredAtTS represents when an operation took effect
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}
