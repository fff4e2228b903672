package todo

import "time"

// TimestampLayout is the format of created_at and updated_at.
// It is valid RFC3339, always UTC and fixed width, so stamps compare
// lexically in the same order as the instants they represent.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ToPtr returns a pointer to the given value.
// This is useful for creating pointers to literals or converting values to pointers.
func ToPtr[T any](v T) *T {
	return &v
}

// FormatTimestamp renders t in TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
