// Package invariant proves the four classes of conservation invariants
// described in spec.md §4.6 after the ledger has seeded, posted, rolled
// forward, and summarized. Tolerance comparisons use
// gonum.org/v1/gonum/floats/scalar.EqualWithinAbs on the float64 projection of
// each Money delta, promoting the teacher's already-present (but merely
// transitive) gonum dependency to direct, exercised use in place of a
// hand-rolled math.Abs(...) > tolerance check.
package invariant

import (
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/fiscalsim/engine/internal/datekernel"
	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/ledger"
	"github.com/fiscalsim/engine/internal/simerr"
)

// Tolerance is the per-account, per-check comparison tolerance from
// spec.md §4.6.
const Tolerance = 0.01

func within(a, b domain.Money) bool {
	return scalar.EqualWithinAbs(a.Float64(), b.Float64(), Tolerance)
}

// Check runs I1-I4 against the ledger's monthly balances and the computed
// MonthlySummary/OverallSummary. It returns the first violation found, or
// nil if every invariant holds.
func Check(
	l *ledger.Ledger,
	startingBalances map[domain.Account]domain.Money,
	monthly []domain.MonthlySummary,
	overall domain.OverallSummary,
) error {
	fiscalStartMonth := l.FiscalStartMonth()
	order := datekernel.FiscalMonthOrder(fiscalStartMonth)

	if err := checkSeed(l, fiscalStartMonth, startingBalances); err != nil {
		return err
	}
	if err := checkRollForward(l, order); err != nil {
		return err
	}
	if err := checkConservation(l, order, startingBalances); err != nil {
		return err
	}
	if err := checkVAT(monthly, overall); err != nil {
		return err
	}
	return nil
}

// checkSeed is I1: openingBalance[fiscalStartMonth] equals the configured
// starting balance for every Account.
func checkSeed(l *ledger.Ledger, fiscalStartMonth int, starting map[domain.Account]domain.Money) error {
	for _, acct := range domain.Accounts {
		got := l.BalanceAt(acct, fiscalStartMonth).OpeningBalance
		want := starting[acct]
		if !within(got, want) {
			return violation("I1-opening-seed", acct, got, want)
		}
	}
	return nil
}

// checkRollForward is I2: for every fiscal-adjacent pair (prev, cur) with
// cur != fiscalStartMonth, cur.opening == prev.closing and
// cur.closing == cur.opening + cur.netChange.
func checkRollForward(l *ledger.Ledger, order [12]int) error {
	for _, acct := range domain.Accounts {
		for i := 1; i < len(order); i++ {
			prev := l.BalanceAt(acct, order[i-1])
			cur := l.BalanceAt(acct, order[i])
			if !within(cur.OpeningBalance, prev.ClosingBalance) {
				return violation("I2-roll-forward-opening", acct, cur.OpeningBalance, prev.ClosingBalance)
			}
			expectedClosing := cur.OpeningBalance.Add(cur.Summary.NetChange)
			if !within(cur.ClosingBalance, expectedClosing) {
				return violation("I2-roll-forward-closing", acct, cur.ClosingBalance, expectedClosing)
			}
		}
	}
	return nil
}

// checkConservation is I3: the last fiscal month's closing balance equals
// starting + sum of every month's net change.
func checkConservation(l *ledger.Ledger, order [12]int, starting map[domain.Account]domain.Money) error {
	for _, acct := range domain.Accounts {
		sum := domain.Zero
		for _, m := range order {
			sum = sum.Add(l.BalanceAt(acct, m).Summary.NetChange)
		}
		want := starting[acct].Add(sum)
		got := l.BalanceAt(acct, order[len(order)-1]).ClosingBalance
		if !within(got, want) {
			return violation("I3-conservation", acct, got, want)
		}
	}
	return nil
}

// checkVAT is I4: monthly revenue/deductible VAT sums reconcile with the
// overall totals, and netVatOwed is their difference.
func checkVAT(monthly []domain.MonthlySummary, overall domain.OverallSummary) error {
	var collected, deductible domain.Money
	for _, ms := range monthly {
		collected = collected.Add(ms.Totals.RevenueVAT)
		deductible = deductible.Add(ms.Totals.ExpenseVATDeductible)
	}
	if !within(collected, overall.TotalVATCollected) {
		return violation("I4-vat-collected", domain.AccountVAT, collected, overall.TotalVATCollected)
	}
	if !within(deductible, overall.TotalVATDeductible) {
		return violation("I4-vat-deductible", domain.AccountVAT, deductible, overall.TotalVATDeductible)
	}
	expectedOwed := overall.TotalVATCollected.Sub(overall.TotalVATDeductible)
	if !within(overall.NetVATOwed, expectedOwed) {
		return violation("I4-vat-owed", domain.AccountVAT, overall.NetVATOwed, expectedOwed)
	}
	return nil
}

func violation(check string, acct domain.Account, left, right domain.Money) error {
	delta := left.Sub(right)
	return &simerr.InvariantViolation{
		Check:   check,
		Account: acct.String(),
		Left:    left.String(),
		Right:   right.String(),
		Delta:   delta.String(),
	}
}
