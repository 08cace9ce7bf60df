package core

import (
	"time"
)

// dateLayout is how report dates appear in titles and file names
const dateLayout = "2006-01-02"

// Timestamp is a UTC instant at second precision, the resolution the report
// store keeps
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

// NewTimestamp converts t to UTC and drops sub-second precision
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC().Truncate(time.Second))
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// Date formats the calendar day, e.g. 2025-03-31
func (t Timestamp) Date() string { return t.Time().Format(dateLayout) }

// String formats the timestamp as RFC3339
func (t Timestamp) String() string { return t.Time().Format(time.RFC3339) }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = NewTimestamp(tm)
	return nil
}
