// Package hijri wraps Gregorian-to-Hijri conversion for the task filter
// and the portal spawner, both of which schedule against the Hijri calendar.
package hijri

import (
	"time"

	gohijri "github.com/hablullah/go-hijri"
)

// Date is a Hijri calendar date.
type Date struct {
	Year  int
	Month int
	Day   int
}

// FromTime converts a Gregorian date to its Hijri equivalent using the
// standard tabular calendar. Conversion only fails for dates before the
// Hijri epoch, which cannot occur for wall-clock input; in that case the
// zero Date is returned and no predicate will match.
func FromTime(t time.Time) Date {
	h, err := gohijri.CreateHijriDate(t, gohijri.Default)
	if err != nil {
		return Date{}
	}
	return Date{Year: int(h.Year), Month: int(h.Month), Day: int(h.Day)}
}

// IsWhiteDay reports whether d is one of the 13th, 14th or 15th of the
// Hijri month, the traditional voluntary fasting days.
func (d Date) IsWhiteDay() bool {
	return d.Day == 13 || d.Day == 14 || d.Day == 15
}

// IsAshura reports whether d is the 10th of Muharram.
func (d Date) IsAshura() bool {
	return d.Month == 1 && d.Day == 10
}
