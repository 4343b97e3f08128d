// Package runner implements the SimulationRunner, per spec.md §4.7: validate
// input, expand every pattern into occurrences, apply them to a ledger,
// roll forward once, summarize, and check invariants — emitting progress
// snapshots at fixed milestones along the way. Grounded in the corpus's
// engine_full.go / event_handler.go orchestration loop, adapted from a
// retirement-projection Monte Carlo driver to a single deterministic pass
// over one fiscal year.
package runner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fiscalsim/engine/internal/datekernel"
	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/expand"
	"github.com/fiscalsim/engine/internal/invariant"
	"github.com/fiscalsim/engine/internal/ledger"
	"github.com/fiscalsim/engine/internal/obslog"
	"github.com/fiscalsim/engine/internal/progress"
	"github.com/fiscalsim/engine/internal/simerr"
)

// Runner executes one simulation and reports progress to a Broadcaster.
type Runner struct {
	broadcaster *progress.Broadcaster
}

// New returns a Runner that reports to b. b may be nil, in which case
// progress reporting is skipped (used by tests that only care about
// SimulationResults).
func New(b *progress.Broadcaster) *Runner {
	return &Runner{broadcaster: b}
}

// Run executes the full pipeline from spec.md §4.7 for in, honoring ctx
// cancellation between fiscal-month steps and emitting the progress
// schedule: 10 (validated) -> 20 (ledger seeded) -> 20+60*k/12 per
// completed fiscal month -> 85 (rolled forward) -> 90 (monthly summaries)
// -> 95 (overall summary) -> 100 (done).
func (r *Runner) Run(ctx context.Context, simulationID string, in Input) (domain.SimulationResults, error) {
	start := time.Now()
	lastProgress := 0

	if err := Validate(in); err != nil {
		r.publishFailed(simulationID, lastProgress, err)
		return domain.SimulationResults{}, err
	}
	lastProgress = 10
	r.publish(simulationID, domain.StatusRunning, lastProgress, 0, nil, "validated input")

	if err := ctx.Err(); err != nil {
		return r.cancelled(simulationID, lastProgress)
	}

	region := in.Company.HolidayRegion
	if region == "" {
		region = domain.RegionFR
	}

	occurrencesByMonth := make(map[int][]domain.Occurrence, 12)
	total := 0
	for _, p := range in.Patterns {
		for _, occ := range expand.Expand(p, in.Fiscal.Year, region) {
			occurrencesByMonth[occ.Date.Month()] = append(occurrencesByMonth[occ.Date.Month()], occ)
			total++
		}
	}
	obslog.Debugf("runner: expanded %d patterns into %d occurrences", len(in.Patterns), total)

	if err := ctx.Err(); err != nil {
		return r.cancelled(simulationID, lastProgress)
	}

	l := ledger.New(in.Fiscal.FiscalStartMonth, in.Fiscal.StartingBalances)
	order := datekernel.FiscalMonthOrder(in.Fiscal.FiscalStartMonth)
	lastProgress = 20
	r.publish(simulationID, domain.StatusRunning, lastProgress, 0, nil, fmt.Sprintf("seeded ledger, %d occurrences", total))

	for i, month := range order {
		if err := ctx.Err(); err != nil {
			return r.cancelled(simulationID, lastProgress)
		}

		occs := occurrencesByMonth[month]
		sort.Slice(occs, func(a, b int) bool { return occs[a].Date.Before(occs[b].Date) })
		for _, occ := range occs {
			l.ApplyOccurrence(occ)
		}

		progressPct := 20 + (60*(i+1))/12
		partial := make(map[domain.Account]domain.Money, len(domain.Accounts))
		for _, acct := range domain.Accounts {
			partial[acct] = l.BalanceAt(acct, month).OpeningBalance.Add(l.BalanceAt(acct, month).Summary.NetChange)
		}
		lastProgress = progressPct
		r.publishWithTaxes(simulationID, progressPct, month, partial, indicativeTaxes(l, month),
			fmt.Sprintf("processed %s", datekernel.DisplayName(month, in.Fiscal.FiscalStartMonth)))
	}

	l.RollForward()
	lastProgress = 85
	r.publish(simulationID, domain.StatusRunning, lastProgress, 0, nil, "rolled forward")

	if err := ctx.Err(); err != nil {
		return r.cancelled(simulationID, lastProgress)
	}

	monthly := l.MonthlySummaries()
	lastProgress = 90
	r.publish(simulationID, domain.StatusRunning, lastProgress, 0, nil, "monthly summaries computed")

	overall := ledger.OverallSummary(monthly)
	lastProgress = 95
	r.publish(simulationID, domain.StatusRunning, lastProgress, 0, nil, "overall summary computed")

	if err := invariant.Check(l, in.Fiscal.StartingBalances, monthly, overall); err != nil {
		r.publishFailed(simulationID, lastProgress, err)
		return domain.SimulationResults{}, err
	}

	results := domain.SimulationResults{
		Year:             in.Fiscal.Year,
		FiscalStartMonth: in.Fiscal.FiscalStartMonth,
		MonthlyBalances:  l.MonthlyBalances(),
		MonthlyTotals:    monthly,
		OverallTotals:    overall,
		Metadata: domain.ResultMetadata{
			TotalOccurrences: total,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			EngineVersion:    domain.EngineVersion,
		},
	}

	r.publish(simulationID, domain.StatusCompleted, 100, 0, overall.FinalAccountBalances, "completed")
	if r.broadcaster != nil {
		r.broadcaster.Close()
	}
	return results, nil
}

// indicativeTaxes estimates the progress-time-only TVA/URSSAF figures from
// spec.md §4.7/§9: tva is the VAT account's running closing-so-far balance,
// urssaf is monthRevenueNet*0.45 (an indicative social-charges estimate,
// never an authoritative liability per the Open Question in spec.md §9),
// and netCashFlow is monthRevenueNet + monthExpensesSigned. These are never
// used by invariant checking or the final SimulationResults;
// Taxes.Indicative is always true.
func indicativeTaxes(l *ledger.Ledger, month int) *domain.IndicativeTaxes {
	vatBalance := l.BalanceAt(domain.AccountVAT, month)
	flow := l.FlowAt(month)
	netCashFlow := flow.RevenueNet.Sub(flow.ExpenseNet)
	urssafRate := decimal.NewFromFloat(0.45)
	return &domain.IndicativeTaxes{
		Indicative:  true,
		TVA:         vatBalance.OpeningBalance.Add(vatBalance.Summary.NetChange).Abs(),
		URSSAF:      flow.RevenueNet.MulRate(urssafRate),
		NetCashFlow: netCashFlow,
	}
}

func (r *Runner) publish(simulationID string, status domain.SimulationStatus, pct, month int, balances map[domain.Account]domain.Money, message string) {
	if r.broadcaster == nil {
		return
	}
	r.broadcaster.Publish(domain.Snapshot{
		SimulationID:    simulationID,
		Status:          status,
		CurrentMonth:    month,
		Progress:        pct,
		PartialBalances: balances,
		Message:         message,
	})
}

func (r *Runner) publishWithTaxes(simulationID string, pct, month int, balances map[domain.Account]domain.Money, taxes *domain.IndicativeTaxes, message string) {
	if r.broadcaster == nil {
		return
	}
	r.broadcaster.Publish(domain.Snapshot{
		SimulationID:    simulationID,
		Status:          domain.StatusRunning,
		CurrentMonth:    month,
		Progress:        pct,
		PartialBalances: balances,
		Taxes:           taxes,
		Message:         message,
	})
}

// publishFailed delivers the terminal failed snapshot. Its Progress is the
// highest progress already published for this run, never 0 — spec.md
// §4.7/§5/§8 scenario 6 require every subscriber to observe a
// non-decreasing progress sequence, so a cancellation or invariant
// violation arriving after, say, 80% must not regress the stream back to
// 0 before the terminal event.
func (r *Runner) publishFailed(simulationID string, lastProgress int, err error) {
	if r.broadcaster == nil {
		return
	}
	r.broadcaster.Publish(domain.Snapshot{
		SimulationID: simulationID,
		Status:       domain.StatusFailed,
		Progress:     lastProgress,
		Message:      err.Error(),
	})
	r.broadcaster.Close()
}

func (r *Runner) cancelled(simulationID string, lastProgress int) (domain.SimulationResults, error) {
	err := &simerr.Cancelled{}
	r.publishFailed(simulationID, lastProgress, err)
	return domain.SimulationResults{}, err
}
