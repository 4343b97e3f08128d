package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/expand"
	"github.com/fiscalsim/engine/internal/ledger"
)

func startingBalances() map[domain.Account]domain.Money {
	return map[domain.Account]domain.Money{
		domain.AccountOperating: domain.NewMoney(1000),
		domain.AccountSavings:   domain.NewMoney(5000),
		domain.AccountPersonal:  domain.NewMoney(0),
		domain.AccountVAT:       domain.NewMoney(0),
	}
}

func TestLedger_RollForward_SeedsOpeningBalanceAtFiscalStart(t *testing.T) {
	// GIVEN a ledger with a fiscal year starting in April
	fiscalStartMonth := 4
	l := ledger.New(fiscalStartMonth, startingBalances())

	// WHEN rolled forward with no postings applied
	l.RollForward()

	// THEN April's opening balance equals the configured starting balance,
	// and its closing balance equals the opening balance (no activity).
	bal := l.BalanceAt(domain.AccountOperating, fiscalStartMonth)
	require.Equal(t, "1000.00", bal.OpeningBalance.String())
	require.Equal(t, "1000.00", bal.ClosingBalance.String())
}

func TestLedger_RollForward_ChainsClosingToNextOpening(t *testing.T) {
	// GIVEN a calendar fiscal year and a single expense in January
	l := ledger.New(1, startingBalances())
	p := domain.Pattern{
		ID:         "rent",
		Kind:       domain.PatternExpense,
		Amount:     domain.NewMoney(500),
		Frequency:  domain.FrequencyMonthly,
		StartMonth: 1,
	}
	for _, occ := range expand.Expand(p, 2026, domain.RegionFR) {
		l.ApplyOccurrence(occ)
	}

	// WHEN rolled forward
	l.RollForward()

	// THEN February's opening balance equals January's closing balance
	jan := l.BalanceAt(domain.AccountOperating, 1)
	feb := l.BalanceAt(domain.AccountOperating, 2)
	require.True(t, feb.OpeningBalance.Equal01(jan.ClosingBalance))
}

func TestLedger_MonthlySummaries_LastEntryIsFiscalYearEnd(t *testing.T) {
	// GIVEN a ledger with fiscal year starting in July
	l := ledger.New(7, startingBalances())
	l.RollForward()

	summaries := l.MonthlySummaries()

	// THEN the summaries are ordered July..June, not January..December
	require.Len(t, summaries, 12)
	require.Equal(t, 7, summaries[0].Month)
	require.Equal(t, 6, summaries[len(summaries)-1].Month)
}

func TestOverallSummary_FinalBalancesComeFromLastFiscalMonth(t *testing.T) {
	// GIVEN a ledger whose fiscal year starts in April (so December is not
	// the last fiscal month, March is)
	l := ledger.New(4, startingBalances())
	l.RollForward()
	summaries := l.MonthlySummaries()

	overall := ledger.OverallSummary(summaries)

	lastSummary := summaries[len(summaries)-1]
	require.Equal(t, 3, lastSummary.Month, "last fiscal month of a April-start year is March")
	for acct, bal := range lastSummary.AccountBalances {
		require.True(t, overall.FinalAccountBalances[acct].Equal01(bal))
	}
}
