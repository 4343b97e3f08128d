package invariant_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/expand"
	"github.com/fiscalsim/engine/internal/invariant"
	"github.com/fiscalsim/engine/internal/ledger"
)

func seed() map[domain.Account]domain.Money {
	return map[domain.Account]domain.Money{
		domain.AccountOperating: domain.NewMoney(2000),
		domain.AccountSavings:   domain.NewMoney(10000),
		domain.AccountPersonal:  domain.NewMoney(0),
		domain.AccountVAT:       domain.NewMoney(0),
	}
}

func runOneYear(fiscalStartMonth int, patterns []domain.Pattern, year int) (*ledger.Ledger, []domain.MonthlySummary, domain.OverallSummary) {
	l := ledger.New(fiscalStartMonth, seed())
	for _, p := range patterns {
		for _, occ := range expand.Expand(p, year, domain.RegionFR) {
			l.ApplyOccurrence(occ)
		}
	}
	l.RollForward()
	monthly := l.MonthlySummaries()
	overall := ledger.OverallSummary(monthly)
	return l, monthly, overall
}

func TestCheck_HoldsForASimpleRevenueAndExpenseYear(t *testing.T) {
	// GIVEN one monthly revenue pattern and one monthly expense pattern
	rate := domain.VATRateStandard
	patterns := []domain.Pattern{
		{ID: "sales", Kind: domain.PatternRevenue, Amount: domain.NewMoney(3000), Frequency: domain.FrequencyMonthly, StartMonth: 1, VATRate: &rate},
		{ID: "rent", Kind: domain.PatternExpense, Amount: domain.NewMoney(800), Frequency: domain.FrequencyMonthly, StartMonth: 1, VATDeductible: true},
	}
	l, monthly, overall := runOneYear(1, patterns, 2026)

	// WHEN checked
	err := invariant.Check(l, seed(), monthly, overall)

	// THEN every invariant holds
	require.NoError(t, err)
}

func TestCheck_HoldsAcrossAnOffsetFiscalYear(t *testing.T) {
	// GIVEN the same patterns but a fiscal year starting in September
	patterns := []domain.Pattern{
		{ID: "sales", Kind: domain.PatternRevenue, Amount: domain.NewMoney(1500), Frequency: domain.FrequencyMonthly, StartMonth: 1},
	}
	l, monthly, overall := runOneYear(9, patterns, 2026)

	err := invariant.Check(l, seed(), monthly, overall)

	require.NoError(t, err)
}

func TestCheck_DetectsOpeningSeedMismatch(t *testing.T) {
	// GIVEN a ledger rolled forward against one seed
	l, monthly, overall := runOneYear(1, nil, 2026)

	// WHEN checked against a different seed
	wrongSeed := seed()
	wrongSeed[domain.AccountOperating] = domain.NewMoney(999999)

	err := invariant.Check(l, wrongSeed, monthly, overall)

	require.Error(t, err)
}
