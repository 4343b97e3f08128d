// Package calendar computes the set of French national and regional
// holiday dates for a given year, per spec.md §4.1. An unknown region
// silently downgrades to the national set rather than erroring, the same
// "unsupported country still returns the base set" behavior the corpus's
// GoHoliday country providers show for unrecognized subdivisions.
package calendar

import (
	"time"

	"github.com/fiscalsim/engine/internal/domain"
)

// HolidaySet is the set of holiday dates for one (year, region) pair.
type HolidaySet map[domain.DateISO]struct{}

// Contains reports whether d is a holiday in this set.
func (s HolidaySet) Contains(d domain.DateISO) bool {
	_, ok := s[d]
	return ok
}

func fromTime(t time.Time) domain.DateISO {
	return domain.NewDate(t.Year(), t.Month(), t.Day())
}

// isRegional reports whether region carries the Alsace-Moselle addenda
// (Good Friday, St. Stephen's Day).
func isRegional(region domain.HolidayRegion) bool {
	switch region {
	case domain.RegionFR67, domain.RegionFR68, domain.RegionFR57:
		return true
	default:
		return false
	}
}

// Compute returns the holiday set for (year, region). It never errors: an
// unrecognized region is treated as national-only, per spec.md §4.1's
// failure semantics.
func Compute(year int, region domain.HolidayRegion) HolidaySet {
	easter := easterSunday(year)
	set := make(HolidaySet, 13)

	add := func(t time.Time) { set[fromTime(t)] = struct{}{} }

	// National set, every region.
	add(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))   // New Year
	add(time.Date(year, time.May, 1, 0, 0, 0, 0, time.UTC))       // Labour Day
	add(time.Date(year, time.May, 8, 0, 0, 0, 0, time.UTC))       // Victory 1945
	add(time.Date(year, time.July, 14, 0, 0, 0, 0, time.UTC))     // National Day
	add(time.Date(year, time.August, 15, 0, 0, 0, 0, time.UTC))   // Assumption
	add(time.Date(year, time.November, 1, 0, 0, 0, 0, time.UTC))  // All Saints
	add(time.Date(year, time.November, 11, 0, 0, 0, 0, time.UTC)) // Armistice
	add(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)) // Christmas
	add(easter.AddDate(0, 0, 1))                                  // Easter Monday
	add(easter.AddDate(0, 0, 39))                                 // Ascension
	add(easter.AddDate(0, 0, 50))                                 // Whit Monday

	if isRegional(region) {
		add(easter.AddDate(0, 0, -2))                             // Good Friday
		add(time.Date(year, time.December, 26, 0, 0, 0, 0, time.UTC)) // St. Stephen's Day
	}

	return set
}
