package payoutcli

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/quizrewards/internal/domain/model"
	"github.com/okian/quizrewards/internal/domain/usdc"
	"github.com/okian/quizrewards/pkg/logger"
)

// Audit loads and prints the payout audit of one tournament. A distribution
// that does not match the expected pool returns ErrUnbalanced.
func (r *Runner) Audit(ctx context.Context, kind model.TournamentKind, id int64) (model.TournamentAudit, error) {
	a, err := r.svc.AuditTournament(ctx, kind, id)
	if err != nil {
		return model.TournamentAudit{}, fmt.Errorf("audit: %w", err)
	}
	PrintAudit(r.out, a)
	if !a.Balanced() {
		r.logger.Warn(ctx, "tournament distribution does not match",
			logger.Int64("tournament_id", id),
			logger.Int64("diff", a.Diff))
		return a, fmt.Errorf("%s tournament %d off by %s USDC: %w", a.Kind, id, usdc.Exact(a.Diff), ErrUnbalanced)
	}
	return a, nil
}

// PrintAudit writes expected against distributed amounts, the difference,
// the reward brackets and the largest rewards.
func PrintAudit(w io.Writer, a model.TournamentAudit) {
	p := message.NewPrinter(language.English)
	usd := func(v int64) string { return p.Sprintf("%.2f", usdc.FromUSDC(v)) }

	p.Fprintf(w, "\n%s tournament %d\n", a.Kind, a.ID)
	p.Fprintf(w, "Prize pool:        %s USDC\n", usd(a.Prize))
	if a.Kind == model.TournamentStreak {
		p.Fprintf(w, "Paid entries:      %d by %d players\n", a.Transactions, a.Players)
	}
	p.Fprintf(w, "Expected payout:   %s USDC\n", usd(a.Expected))
	p.Fprintf(w, "Distributed:       %s USDC to %d players\n", usd(a.Distributed), a.Rewarded)
	p.Fprintf(w, "Difference:        %s USDC (should be 0)\n", usd(a.Diff))
	for _, b := range a.Brackets {
		p.Fprintf(w, "  %-12s %d players\n", b.Label+":", b.Count)
	}

	if len(a.Top) == 0 {
		return
	}
	p.Fprintf(w, "Top %d rewards:\n", len(a.Top))
	for i, t := range a.Top {
		name := t.Username
		if name == "" {
			name = t.UserID
		}
		p.Fprintf(w, "%3d. %-24s %12s\n", i+1, name, usd(t.Reward))
	}
}
