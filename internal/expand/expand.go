// Package expand turns a domain.Pattern into the dated Occurrences it
// produces within one target calendar year, per spec.md §4.3. Grounded in
// the corpus's event-generation idiom (wasm/event_generator.go,
// wasm/dynamic_event_support.go): a pattern is expanded by a pure function
// of (pattern, year, holiday region) with no side effects, so the runner
// can call it repeatedly and deterministically.
package expand

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fiscalsim/engine/internal/calendar"
	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/posting"
)

// Expand returns every Occurrence pattern p produces in the given calendar
// year, sorted by date ascending. region selects the holiday calendar used
// for excludeHolidays.
func Expand(p domain.Pattern, year int, region domain.HolidayRegion) []domain.Occurrence {
	var dates []domain.DateISO

	switch p.Frequency {
	case domain.FrequencyMonthly:
		dates = monthlyDates(p, year)
	case domain.FrequencyQuarterly:
		dates = quarterlyDates(p, year)
	case domain.FrequencyYearly:
		dates = yearlyDates(p, year)
	case domain.FrequencyDaily:
		dates = dailyDates(p, year, region)
	default:
		dates = nil
	}

	occurrences := make([]domain.Occurrence, 0, len(dates))
	for _, d := range dates {
		occurrences = append(occurrences, buildOccurrence(p, d))
	}

	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].Date.Before(occurrences[j].Date)
	})
	return occurrences
}

func monthlyDates(p domain.Pattern, year int) []domain.DateISO {
	var dates []domain.DateISO
	for m := p.StartMonth; m <= 12; m++ {
		dates = append(dates, domain.NewDate(year, monthTime(m), 1))
	}
	return dates
}

func quarterlyDates(p domain.Pattern, year int) []domain.DateISO {
	q := (p.StartMonth + 2) / 3 // ceil(startMonth/3)
	var dates []domain.DateISO
	for ; q <= 4; q++ {
		m := 3*(q-1) + 1
		dates = append(dates, domain.NewDate(year, monthTime(m), 1))
	}
	return dates
}

func yearlyDates(p domain.Pattern, year int) []domain.DateISO {
	return []domain.DateISO{domain.NewDate(year, monthTime(p.StartMonth), 1)}
}

// dailyDates implements the strict daily-precedence policy from spec.md
// §4.3: override > daysMask > excludeWeekends > excludeHolidays. The
// expansion window is [max(startDate, Jan 1 year), Dec 31 year], inclusive.
func dailyDates(p domain.Pattern, year int, region domain.HolidayRegion) []domain.DateISO {
	windowStart := domain.NewDate(year, monthTime(1), 1)
	if p.StartDate != nil && p.StartDate.After(windowStart) {
		windowStart = *p.StartDate
	}
	windowEnd := domain.NewDate(year, monthTime(12), 31)
	if windowStart.After(windowEnd) {
		return nil
	}

	overrides := latestOverrideByDate(p.DayOffOverrides)
	holidays := calendar.Get(year, region)

	var dates []domain.DateISO
	for d := windowStart; !d.After(windowEnd); d = d.AddDays(1) {
		if isActive(p, d, overrides, holidays) {
			dates = append(dates, d)
		}
	}
	return dates
}

// latestOverrideByDate keys overrides by date, keeping the last one when
// duplicates are present (spec.md §4.3 step 1).
func latestOverrideByDate(overrides []domain.DayOffOverride) map[domain.DateISO]bool {
	m := make(map[domain.DateISO]bool, len(overrides))
	for _, o := range overrides {
		m[o.Date] = o.Active
	}
	return m
}

func isActive(p domain.Pattern, d domain.DateISO, overrides map[domain.DateISO]bool, holidays calendar.HolidaySet) bool {
	// 1. Override wins unconditionally.
	if active, ok := overrides[d]; ok {
		return active
	}

	// 2. daysMask (absent/zero means every day is initially active).
	dow := d.Weekday()
	active := p.DaysMask == 0 || (p.DaysMask>>dow)&1 == 1

	// 3. excludeWeekends.
	if p.ExcludeWeekends && (dow == 0 || dow == 6) {
		active = false
	}

	// 4. excludeHolidays.
	if p.ExcludeHolidays && holidays.Contains(d) {
		active = false
	}

	return active
}

func monthTime(m int) time.Month {
	return time.Month(m)
}

// splitVAT implements spec.md §4.3's gross/VAT/net split:
// vat = gross · r / (1 + r), net = gross - vat. The intermediate product is
// rounded once, at the cent, rather than rounding after the multiply and
// again after the divide.
func splitVAT(gross domain.Money, rate float64) (vat, net domain.Money) {
	r := decimal.NewFromFloat(rate)
	onePlusR := decimal.NewFromInt(1).Add(r)
	vatDecimal := gross.Decimal().Mul(r).Div(onePlusR).Round(2)
	vat = domain.MoneyFromDecimal(vatDecimal)
	net = gross.Sub(vat)
	return vat, net
}

// buildOccurrence constructs the Occurrence for pattern p on date d:
// gross/VAT/net split plus the postings PostingBuilder derives from it.
func buildOccurrence(p domain.Pattern, d domain.DateISO) domain.Occurrence {
	rate := p.EffectiveVATRate()
	rateFraction := float64(rate) / 100.0

	gross := p.Amount
	vat, net := splitVAT(gross, rateFraction)

	kind := domain.OccurrenceExpense
	if p.IsRevenue() {
		kind = domain.OccurrenceRevenue
	}

	occ := domain.Occurrence{
		ID:            fmt.Sprintf("%s-%s", p.ID, d.String()),
		PatternID:     p.ID,
		PatternName:   p.Name,
		Date:          d,
		Kind:          kind,
		Category:      p.Category,
		GrossAmount:   gross,
		VATRate:       rateFraction,
		VATAmount:     vat,
		NetAmount:     net,
		VATDeductible: p.VATDeductible,
	}
	occ.Postings = posting.Build(occ)
	return occ
}
