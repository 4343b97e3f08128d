package ledger

import (
	"github.com/fiscalsim/engine/internal/datekernel"
	"github.com/fiscalsim/engine/internal/domain"
)

// accumulateFlow folds one Occurrence into its calendar month's revenue/
// expense/VAT aggregates, independent of the per-account posting buckets.
// These feed MonthlySummary (spec.md §4.5 step 4), not the roll-forward.
func (l *Ledger) accumulateFlow(occ domain.Occurrence, monthIdx int) {
	f := &l.flows[monthIdx]
	switch occ.Kind {
	case domain.OccurrenceRevenue:
		f.RevenueGross = f.RevenueGross.Add(occ.GrossAmount)
		f.RevenueNet = f.RevenueNet.Add(occ.NetAmount)
		f.RevenueVAT = f.RevenueVAT.Add(occ.VATAmount)
	case domain.OccurrenceExpense:
		f.ExpenseGross = f.ExpenseGross.Add(occ.GrossAmount)
		f.ExpenseNet = f.ExpenseNet.Add(occ.NetAmount)
		if occ.VATDeductible {
			f.ExpenseVATDeductible = f.ExpenseVATDeductible.Add(occ.VATAmount)
		}
	}
}

// MonthlySummaries computes spec.md §4.5 step 4: for each fiscal month,
// aggregate flow totals and a snapshot of every Account's closing balance.
// RollForward must have already run so closing balances are authoritative.
func (l *Ledger) MonthlySummaries() []domain.MonthlySummary {
	order := datekernel.FiscalMonthOrder(l.fiscalStartMonth)
	summaries := make([]domain.MonthlySummary, 0, 12)
	for _, m := range order {
		f := l.flows[m-1]
		f.NetProfit = f.RevenueNet.Sub(f.ExpenseNet)
		f.NetVATPosition = f.RevenueVAT.Sub(f.ExpenseVATDeductible)

		balances := make(map[domain.Account]domain.Money, len(domain.Accounts))
		for _, acct := range domain.Accounts {
			balances[acct] = l.buckets[acct][m-1].ClosingBalance
		}

		summaries = append(summaries, domain.MonthlySummary{
			Month:           m,
			DisplayName:     datekernel.DisplayName(m, l.fiscalStartMonth),
			Totals:          f,
			AccountBalances: balances,
		})
	}
	return summaries
}

// OverallSummary computes spec.md §4.5 step 5: sum the monthly fields, and
// take finalAccountBalances from the *last fiscal month*, not December.
func OverallSummary(monthly []domain.MonthlySummary) domain.OverallSummary {
	var overall domain.OverallSummary
	for _, ms := range monthly {
		overall.TotalRevenue.RevenueGross = overall.TotalRevenue.RevenueGross.Add(ms.Totals.RevenueGross)
		overall.TotalRevenue.RevenueNet = overall.TotalRevenue.RevenueNet.Add(ms.Totals.RevenueNet)
		overall.TotalRevenue.RevenueVAT = overall.TotalRevenue.RevenueVAT.Add(ms.Totals.RevenueVAT)
		overall.TotalExpenses.ExpenseGross = overall.TotalExpenses.ExpenseGross.Add(ms.Totals.ExpenseGross)
		overall.TotalExpenses.ExpenseNet = overall.TotalExpenses.ExpenseNet.Add(ms.Totals.ExpenseNet)
		overall.TotalExpenses.ExpenseVATDeductible = overall.TotalExpenses.ExpenseVATDeductible.Add(ms.Totals.ExpenseVATDeductible)
		overall.NetProfit = overall.NetProfit.Add(ms.Totals.NetProfit)
	}
	overall.TotalVATCollected = overall.TotalRevenue.RevenueVAT
	overall.TotalVATDeductible = overall.TotalExpenses.ExpenseVATDeductible
	overall.NetVATOwed = overall.TotalVATCollected.Sub(overall.TotalVATDeductible)

	if len(monthly) > 0 {
		last := monthly[len(monthly)-1]
		overall.FinalAccountBalances = make(map[domain.Account]domain.Money, len(last.AccountBalances))
		for k, v := range last.AccountBalances {
			overall.FinalAccountBalances[k] = v
		}
	}
	return overall
}
