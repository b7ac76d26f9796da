package clock

import "time"

// Point is a steady time point: virtual time since tick zero.
type Point time.Duration

// Sub returns the duration p - q.
func (p Point) Sub(q Point) time.Duration {
	return time.Duration(p - q)
}

// Add returns p shifted by d.
func (p Point) Add(d time.Duration) Point {
	return p + Point(d)
}

// Before reports whether p is earlier than q.
func (p Point) Before(q Point) bool {
	return p < q
}

// String implements fmt.Stringer.
func (p Point) String() string {
	return time.Duration(p).String()
}

// Steady reads a Master as monotonic time.
type Steady struct {
	master *Master
}

// Now returns the current steady point. Two reads with no Advance in
// between are equal.
func (s Steady) Now() Point {
	return Point(s.master.Elapsed())
}

// System reads a Master as calendar time.
type System struct {
	master *Master
}

// Now returns the epoch shifted by the elapsed virtual time.
func (s System) Now() time.Time {
	return s.master.epoch.Add(s.master.Elapsed())
}

// ToUnix converts t to whole seconds since the Unix epoch. Sub-second
// remainder is dropped.
func (System) ToUnix(t time.Time) int64 {
	return t.Unix()
}

// FromUnix converts whole seconds since the Unix epoch to a calendar time.
func (System) FromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
