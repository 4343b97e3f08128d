// Package posting derives double-entry AccountPostings from an Occurrence,
// per spec.md §4.4. Grounded in the corpus's ledger.go double-entry shape
// (LedgerEntry{AccountID, Amount, Direction}), adapted from string-keyed GL
// accounts to the engine's fixed four-variant domain.Account enum.
package posting

import (
	"fmt"

	"github.com/fiscalsim/engine/internal/domain"
)

// Build returns the postings Occurrence o generates. Revenue occurrences
// post {operating:+net, vat:+vat}. Expense occurrences post
// {operating:-net} and, only when the expense is VAT-deductible and has a
// non-zero VAT amount, {vat:-vat}.
func Build(o domain.Occurrence) []domain.AccountPosting {
	switch o.Kind {
	case domain.OccurrenceRevenue:
		return []domain.AccountPosting{
			{Account: domain.AccountOperating, Amount: o.NetAmount, Description: describe(o)},
			{Account: domain.AccountVAT, Amount: o.VATAmount, Description: describeVAT(o)},
		}
	case domain.OccurrenceExpense:
		postings := []domain.AccountPosting{
			{Account: domain.AccountOperating, Amount: o.NetAmount.Neg(), Description: describe(o)},
		}
		if o.VATDeductible && o.VATAmount.IsPositive() {
			postings = append(postings, domain.AccountPosting{
				Account:     domain.AccountVAT,
				Amount:      o.VATAmount.Neg(),
				Description: describeVAT(o),
			})
		}
		return postings
	default:
		return nil
	}
}

func describe(o domain.Occurrence) string {
	return fmt.Sprintf("%s (%s)", o.PatternName, o.Date)
}

func describeVAT(o domain.Occurrence) string {
	return fmt.Sprintf("VAT on %s (%s)", o.PatternName, o.Date)
}
