// Package epoch converts timestamps between the host calendar epoch
// (1970-01-01) and a configurable virtual epoch year.
package epoch

import (
	"time"
)

const (
	// HostYear is the year whose January 1st is host time zero.
	HostYear = 1970

	secondsPerDay = 24 * 3600
)

// Translator shifts timestamps by the fixed distance between two epoch
// years. It is stateless after construction and safe for concurrent use.
type Translator struct {
	year int
	diff int64
}

// NewTranslator returns a translator for the given virtual epoch year.
// Year 1970 yields the identity translation.
func NewTranslator(year int) *Translator {
	return &Translator{
		year: year,
		diff: epochSeconds(year) - epochSeconds(HostYear),
	}
}

// epochSeconds returns the day count to January 1st, 00:00:00 of the
// given year, expressed in seconds. Leap-year corrections are applied
// only for positive years; non-positive years count plain 365-day years.
func epochSeconds(year int) int64 {
	y := int64(year)
	days := y * 365
	if year > 0 {
		days += (y+3)/4 - (y-1)/100 + (y-1)/400
	}
	return days * secondsPerDay
}

// Year returns the configured virtual epoch year.
func (t *Translator) Year() int {
	return t.year
}

// Diff returns seconds(year) - seconds(1970).
func (t *Translator) Diff() int64 {
	return t.diff
}

// ToVirtual converts a host-epoch timestamp to virtual-epoch terms.
func (t *Translator) ToVirtual(host int64) int64 {
	return host - t.diff
}

// ToHost converts a virtual-epoch timestamp to host-epoch terms.
func (t *Translator) ToHost(virtual int64) int64 {
	return virtual + t.diff
}

// VirtualTime converts a host-epoch time.Time into virtual-epoch terms,
// preserving the sub-second component.
func (t *Translator) VirtualTime(host time.Time) time.Time {
	return time.Unix(t.ToVirtual(host.Unix()), int64(host.Nanosecond()))
}

// HostTime converts a virtual-epoch time.Time into host-epoch terms,
// preserving the sub-second component.
func (t *Translator) HostTime(virtual time.Time) time.Time {
	return time.Unix(t.ToHost(virtual.Unix()), int64(virtual.Nanosecond()))
}

// Widen32 widens a 32-bit time value for translation arithmetic. The
// value is treated as unsigned, so bit patterns above 2^31 stay large
// positive magnitudes instead of wrapping negative.
func Widen32(t int32) int64 {
	return int64(uint32(t))
}
