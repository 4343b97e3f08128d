package posting_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/posting"
)

func TestBuild_Revenue_PostsNetToOperatingAndVATToVAT(t *testing.T) {
	occ := domain.Occurrence{
		Kind:        domain.OccurrenceRevenue,
		NetAmount:   domain.NewMoney(1000),
		VATAmount:   domain.NewMoney(200),
		PatternName: "consulting",
	}

	postings := posting.Build(occ)

	require.Len(t, postings, 2)
	require.Equal(t, domain.AccountOperating, postings[0].Account)
	require.Equal(t, "1000.00", postings[0].Amount.String())
	require.Equal(t, domain.AccountVAT, postings[1].Account)
	require.Equal(t, "200.00", postings[1].Amount.String())
}

func TestBuild_Expense_Deductible_PostsNegativeVAT(t *testing.T) {
	occ := domain.Occurrence{
		Kind:          domain.OccurrenceExpense,
		NetAmount:     domain.NewMoney(500),
		VATAmount:     domain.NewMoney(100),
		VATDeductible: true,
		PatternName:   "rent",
	}

	postings := posting.Build(occ)

	require.Len(t, postings, 2)
	require.Equal(t, domain.AccountOperating, postings[0].Account)
	require.True(t, postings[0].Amount.IsNegative())
	require.Equal(t, "-500.00", postings[0].Amount.String())
	require.Equal(t, domain.AccountVAT, postings[1].Account)
	require.Equal(t, "-100.00", postings[1].Amount.String())
}

func TestBuild_Expense_NotDeductible_OmitsVATPosting(t *testing.T) {
	occ := domain.Occurrence{
		Kind:          domain.OccurrenceExpense,
		NetAmount:     domain.NewMoney(500),
		VATAmount:     domain.NewMoney(100),
		VATDeductible: false,
		PatternName:   "insurance",
	}

	postings := posting.Build(occ)

	require.Len(t, postings, 1)
	require.Equal(t, domain.AccountOperating, postings[0].Account)
}

func TestBuild_Expense_ZeroVAT_OmitsVATPostingEvenIfDeductible(t *testing.T) {
	occ := domain.Occurrence{
		Kind:          domain.OccurrenceExpense,
		NetAmount:     domain.NewMoney(500),
		VATAmount:     domain.Zero,
		VATDeductible: true,
		PatternName:   "zero-rated",
	}

	postings := posting.Build(occ)

	require.Len(t, postings, 1)
}
