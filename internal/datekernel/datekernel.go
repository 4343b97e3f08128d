// Package datekernel provides pure date arithmetic and fiscal-month
// mapping with no locale dependency beyond a hand-written English month-name
// table, per spec.md §4.2.
package datekernel

import (
	"fmt"
	"time"

	"github.com/fiscalsim/engine/internal/domain"
)

var englishMonthNames = [...]string{
	"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// CalendarToFiscal maps a calendar month (1-12) to its position (1-12)
// within a fiscal year starting at fiscalStartMonth.
func CalendarToFiscal(calendarMonth, fiscalStartMonth int) int {
	return (calendarMonth-fiscalStartMonth+12)%12 + 1
}

// FiscalMonthOrder returns the sequence of calendar months in fiscal order:
// [s, s+1, ..., 12, 1, ..., s-1].
func FiscalMonthOrder(fiscalStartMonth int) [12]int {
	var order [12]int
	for i := 0; i < 12; i++ {
		order[i] = (fiscalStartMonth-1+i)%12 + 1
	}
	return order
}

// DisplayName returns the month's display string: the plain English name
// when the fiscal year is the calendar year, otherwise the English name
// annotated with its fiscal-year position.
func DisplayName(calendarMonth, fiscalStartMonth int) string {
	if fiscalStartMonth == 1 {
		return englishMonthNames[calendarMonth]
	}
	k := CalendarToFiscal(calendarMonth, fiscalStartMonth)
	return fmt.Sprintf("%s (FY Month %d)", englishMonthNames[calendarMonth], k)
}

// FirstOfMonth returns the DateISO for the first day of the given calendar
// month in year.
func FirstOfMonth(year, month int) domain.DateISO {
	return domain.NewDate(year, time.Month(month), 1)
}

// LastOfMonth returns the DateISO for the last day of the given calendar
// month in year. It works across a December-to-January rollover by letting
// time.Date normalize the out-of-range month.
func LastOfMonth(year, month int) domain.DateISO {
	t := time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC)
	return domain.NewDate(t.Year(), t.Month(), t.Day())
}

// AddMonths returns the date advanced by n calendar months (n may be
// negative). A day-of-month past the end of the target month is not
// clamped: it overflows into the next month the way time.AddDate does
// (Jan 31 + 1 month is Mar 3, or Mar 2 in a leap year).
func AddMonths(d domain.DateISO, n int) domain.DateISO {
	t := d.Time().AddDate(0, n, 0)
	return domain.NewDate(t.Year(), t.Month(), t.Day())
}
