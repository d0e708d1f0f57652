package payoutcli

import (
	"io"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/quizrewards/internal/domain/model"
	"github.com/okian/quizrewards/internal/domain/usdc"
)

// PrintPlan writes a human-readable table of the plan. Zero payouts without a
// rank notice are hidden unless verbose is set.
func PrintPlan(w io.Writer, plan model.Plan, verbose bool) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "\n%s rewards for %s (run %s)\n", plan.Kind, plan.Period, plan.RunID)
	if plan.Kind == model.KindUSDC {
		p.Fprintf(w, "Pool: %s USDC, %d ranked\n", formatAmount(p, model.AssetUSDC, plan.Unit), plan.Eligible)
	} else {
		p.Fprintf(w, "Eligible: %d (excluded %d), unit %v\n", plan.Eligible, plan.Excluded, plan.Unit)
	}
	p.Fprintf(w, "%6s  %-24s  %-8s  %-8s  %14s\n", "RANK", "USER", "ROLE", "FROM", "AMOUNT")

	shown := 0
	for _, po := range plan.Payouts {
		if po.Amount <= 0 && !po.RankNotice && !verbose {
			continue
		}
		shown++
		p.Fprintf(w, "%6d  %-24s  %-8s  %-8s  %14s\n",
			po.Rank, userLabel(po), po.Role, po.FromUserID, formatAmount(p, po.Asset, po.Amount))
	}
	if hidden := len(plan.Payouts) - shown; hidden > 0 {
		p.Fprintf(w, "(%d zero payouts hidden)\n", hidden)
	}

	asset := plan.Kind.Asset()
	p.Fprintf(w, "Total: %s %s across %d payouts\n", formatAmount(p, asset, plan.Total), asset, len(plan.Creditable()))
}

// PrintReport writes the outcome of an apply run.
func PrintReport(w io.Writer, r model.ApplyReport) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "Applied %d of %d (duplicate %d, failed %d, rejected %d) in %v\n",
		r.Applied, r.Submitted, r.Duplicate, r.Failed, r.Rejected, r.Elapsed.Round(time.Millisecond))
}

func userLabel(po model.Payout) string {
	if po.Username == "" {
		return po.UserID
	}
	return po.Username + " (" + po.UserID + ")"
}

// formatAmount renders USDC at cent precision and whole units otherwise,
// with thousands separators.
func formatAmount(p *message.Printer, asset model.Asset, amount float64) string {
	if asset == model.AssetUSDC {
		return p.Sprintf("%.2f", usdc.FromUSDC(usdc.ToUSDC(amount)))
	}
	return p.Sprintf("%d", int64(math.Round(amount)))
}
