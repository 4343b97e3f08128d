// Package ledger implements the posting & roll-forward subsystem, per
// spec.md §4.5: seed opening balances, apply postings into per-account,
// per-month buckets, roll forward once in fiscal order, then derive
// monthly and overall summaries. Grounded in the corpus's
// internal/engine/cashManagement.go and monthly_types.go for the
// bucket-and-roll-forward shape.
package ledger

import (
	"github.com/fiscalsim/engine/internal/datekernel"
	"github.com/fiscalsim/engine/internal/domain"
)

// Ledger owns the transient, per-run map of Account -> [12]MonthlyAccountBalance,
// keyed by calendar month (index = month - 1). It is owned exclusively by
// one SimulationRunner invocation and discarded afterward (spec.md §3
// lifecycle note).
type Ledger struct {
	fiscalStartMonth int
	buckets          map[domain.Account]*[12]domain.MonthlyAccountBalance
	flows            [12]domain.FlowTotals
}

// New seeds a Ledger from the fiscal configuration's starting balances, per
// spec.md §4.5 step 1: the opening balance of the first fiscal month is the
// configured starting balance; every other month starts the accumulation
// phase at zero.
func New(fiscalStartMonth int, startingBalances map[domain.Account]domain.Money) *Ledger {
	l := &Ledger{
		fiscalStartMonth: fiscalStartMonth,
		buckets:          make(map[domain.Account]*[12]domain.MonthlyAccountBalance),
	}
	for _, acct := range domain.Accounts {
		var months [12]domain.MonthlyAccountBalance
		for m := 1; m <= 12; m++ {
			months[m-1] = domain.MonthlyAccountBalance{
				Account:      acct,
				Month:        m,
				Transactions: nil,
			}
		}
		months[fiscalStartMonth-1].OpeningBalance = startingBalances[acct]
		l.buckets[acct] = &months
	}
	return l
}

// ApplyOccurrence appends every posting of occ to its calendar month's
// bucket, per spec.md §4.5 step 2. Closing balances are not computed here;
// this step only accumulates. Postings within one Occurrence are applied in
// their declared order and this method does not suspend midway (spec.md
// §5's atomicity-per-Occurrence guarantee).
func (l *Ledger) ApplyOccurrence(occ domain.Occurrence) {
	monthIdx := occ.Date.Month() - 1
	l.accumulateFlow(occ, monthIdx)
	for _, p := range occ.Postings {
		bucket := &l.buckets[p.Account][monthIdx]
		bucket.Transactions = append(bucket.Transactions, domain.TransactionRecord{
			OccurrenceID: occ.ID,
			Date:         occ.Date,
			Amount:       p.Amount,
			Description:  p.Description,
		})
		if p.Amount.IsPositive() {
			bucket.Summary.TotalDebits = bucket.Summary.TotalDebits.Add(p.Amount)
		} else if p.Amount.IsNegative() {
			bucket.Summary.TotalCredits = bucket.Summary.TotalCredits.Add(p.Amount)
		}
		bucket.Summary.NetChange = bucket.Summary.NetChange.Add(p.Amount)
	}
}

// RollForward walks fiscalMonthOrder once, computing opening/closing
// balances for every Account, per spec.md §4.5 step 3. It must run after
// every posting has been applied. Every non-seed opening balance is
// overwritten from the prior fiscal month's closing balance, so calling it
// again without new postings yields the same balances.
func (l *Ledger) RollForward() {
	order := datekernel.FiscalMonthOrder(l.fiscalStartMonth)
	for _, acct := range domain.Accounts {
		months := l.buckets[acct]
		for i, m := range order {
			cur := &months[m-1]
			if i == 0 {
				cur.ClosingBalance = cur.OpeningBalance.Add(cur.Summary.NetChange)
				continue
			}
			prevMonth := order[i-1]
			prev := &months[prevMonth-1]
			cur.OpeningBalance = prev.ClosingBalance
			cur.ClosingBalance = cur.OpeningBalance.Add(cur.Summary.NetChange)
		}
	}
}

// BalanceAt returns the current (possibly pre-roll-forward) state of one
// Account's bucket for one calendar month. Used by the progress
// broadcaster to compute "closing balances so far" for a just-processed
// month, per spec.md §4.7.
func (l *Ledger) BalanceAt(acct domain.Account, month int) domain.MonthlyAccountBalance {
	return l.buckets[acct][month-1]
}

// FlowAt returns the revenue/expense aggregates accumulated so far for one
// calendar month, independent of roll-forward. Used by the progress
// broadcaster to compute the indicative urssaf/netCashFlow figures from
// spec.md §4.7 without waiting for MonthlySummaries' final pass.
func (l *Ledger) FlowAt(month int) domain.FlowTotals {
	return l.flows[month-1]
}

// MonthlyBalances flattens the ledger into spec.md §3's sorted slice:
// fiscal order, then Account order within each month.
func (l *Ledger) MonthlyBalances() []domain.MonthlyAccountBalance {
	order := datekernel.FiscalMonthOrder(l.fiscalStartMonth)
	result := make([]domain.MonthlyAccountBalance, 0, 12*len(domain.Accounts))
	for _, m := range order {
		for _, acct := range domain.Accounts {
			result = append(result, l.buckets[acct][m-1])
		}
	}
	return result
}

// FiscalStartMonth exposes the configured start month for callers that
// only hold a *Ledger.
func (l *Ledger) FiscalStartMonth() int { return l.fiscalStartMonth }
