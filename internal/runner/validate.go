package runner

import (
	"fmt"

	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/simerr"
)

// MaxPatterns is the ceiling on patterns accepted by one simulation, per
// spec.md §4.8.
const MaxPatterns = 100

// Input bundles everything one simulation run needs.
type Input struct {
	Company  domain.Company
	Fiscal   domain.FiscalConfig
	Patterns []domain.Pattern
}

// Validate checks Input against the rules in spec.md §4.8 and returns the
// first violation found, wrapped in a *simerr.ValidationError.
func Validate(in Input) error {
	if err := validateCompany(in.Company); err != nil {
		return err
	}
	if in.Fiscal.Year < 2020 || in.Fiscal.Year > 2030 {
		return &simerr.ValidationError{Field: "fiscal.year", Reason: "must be between 2020 and 2030"}
	}
	if in.Fiscal.FiscalStartMonth < 1 || in.Fiscal.FiscalStartMonth > 12 {
		return &simerr.ValidationError{Field: "fiscal.fiscalStartMonth", Reason: "must be between 1 and 12"}
	}
	for _, acct := range domain.Accounts {
		if _, ok := in.Fiscal.StartingBalances[acct]; !ok {
			return &simerr.ValidationError{
				Field:  "fiscal.startingBalances",
				Reason: fmt.Sprintf("missing opening balance for account %s", acct),
			}
		}
	}
	if len(in.Patterns) > MaxPatterns {
		return &simerr.ValidationError{
			Field:  "patterns",
			Reason: fmt.Sprintf("at most %d patterns are allowed, got %d", MaxPatterns, len(in.Patterns)),
		}
	}
	for _, p := range in.Patterns {
		if err := validatePattern(p); err != nil {
			return err
		}
	}
	return nil
}

// validateCompany checks the Company fields spec.md §4.8 requires to be
// non-empty (id, userId, legalForm, activitySector, capital, bankPartner),
// plus fiscalYear's closed set when present.
func validateCompany(c domain.Company) error {
	if c.ID == "" {
		return &simerr.ValidationError{Field: "company.id", Reason: "required"}
	}
	if c.UserID == "" {
		return &simerr.ValidationError{Field: "company.userId", Reason: "required"}
	}
	if c.LegalForm == "" {
		return &simerr.ValidationError{Field: "company.legalForm", Reason: "required"}
	}
	if c.ActivitySector == "" {
		return &simerr.ValidationError{Field: "company.activitySector", Reason: "required"}
	}
	if c.Capital.IsZero() {
		return &simerr.ValidationError{Field: "company.capital", Reason: "required"}
	}
	if c.BankPartner == "" {
		return &simerr.ValidationError{Field: "company.bankPartner", Reason: "required"}
	}
	if c.FiscalYear != "" && c.FiscalYear != domain.FiscalYearCalendar && c.FiscalYear != domain.FiscalYearFiscal {
		return &simerr.ValidationError{
			Field:  "company.fiscalYear",
			Reason: fmt.Sprintf("must be %q or %q when present", domain.FiscalYearCalendar, domain.FiscalYearFiscal),
		}
	}
	return nil
}

func validatePattern(p domain.Pattern) error {
	if p.ID == "" {
		return &simerr.ValidationError{Field: "pattern.id", Reason: "required"}
	}
	if p.Kind != domain.PatternRevenue && p.Kind != domain.PatternExpense {
		return &simerr.ValidationError{Field: "pattern.kind", Reason: fmt.Sprintf("unknown kind %q", p.Kind)}
	}
	if !p.Amount.IsPositive() {
		return &simerr.ValidationError{Field: "pattern.amount", Reason: "must be greater than zero"}
	}
	switch p.Frequency {
	case domain.FrequencyDaily, domain.FrequencyMonthly, domain.FrequencyQuarterly, domain.FrequencyYearly:
	default:
		return &simerr.ValidationError{Field: "pattern.frequency", Reason: fmt.Sprintf("unknown frequency %q", p.Frequency)}
	}
	if p.StartMonth < 1 || p.StartMonth > 12 {
		return &simerr.ValidationError{Field: "pattern.startMonth", Reason: "must be between 1 and 12"}
	}
	// Daily-only fields are ignored for every other frequency, never
	// validated; a daily pattern's mask must stay within the 7-bit range.
	if p.Frequency == domain.FrequencyDaily && (p.DaysMask < 0 || p.DaysMask > 127) {
		return &simerr.ValidationError{Field: "pattern.daysMask", Reason: "must be between 0 and 127"}
	}
	if p.IsRevenue() && p.VATRate != nil && !domain.ValidVATRate(*p.VATRate) {
		return &simerr.ValidationError{
			Field:  "pattern.vatRate",
			Reason: fmt.Sprintf("%.1f is not a legal French VAT rate", float64(*p.VATRate)),
		}
	}
	return nil
}
