package model

import "time"

// Timestamp is a point in time as whole seconds since the Unix epoch.  All
// reservation intervals use it so that equality and overlap checks never
// involve fractional seconds.
type Timestamp int64

// At converts t to a Timestamp, dropping sub-second precision.
func At(t time.Time) Timestamp { return Timestamp(t.Unix()) }

// In returns the timestamp as a time.Time in the given location.
func (ts Timestamp) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(int64(ts), 0).In(loc)
}

// Add returns ts shifted by d, truncated to whole seconds.
func (ts Timestamp) Add(d time.Duration) Timestamp {
	return ts + Timestamp(d/time.Second)
}

// Minutes returns the whole minutes between ts and end.
func (ts Timestamp) Minutes(end Timestamp) int {
	return int((end - ts) / 60)
}
