package pvpchess

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/atomic-chess-bot/internal/metrics"
	"github.com/park285/atomic-chess-bot/internal/obslog"
)

// ReasonNotYourTurn labels moves sent out of turn in metrics.
const ReasonNotYourTurn = "NOT_YOUR_TURN"

// ObserveMove logs a processed move and feeds rec. Conflicts are counted by the caller.
func ObserveMove(rec metrics.Recorder, backend string, g *Game, userID, text string, out MoveOutcome) {
	if rec == nil {
		rec = metrics.Nop{}
	}
	log := obslog.L()
	switch {
	case out.NotYourTurn:
		rec.MoveRejected(ReasonNotYourTurn)
		log.Info("atomic_move_rejected",
			zap.String("backend", backend),
			zap.String("game_id", g.ID),
			zap.String("user_id", strings.TrimSpace(userID)),
			zap.String("reason", ReasonNotYourTurn),
		)
		return
	case !out.Result.Accepted:
		rec.MoveRejected(string(out.Result.Reason))
		log.Info("atomic_move_rejected",
			zap.String("backend", backend),
			zap.String("game_id", g.ID),
			zap.String("user_id", strings.TrimSpace(userID)),
			zap.String("input", text),
			zap.String("reason", string(out.Result.Reason)),
		)
		return
	}

	res := out.Result
	rec.MoveAccepted(res.Captured)
	log.Info("atomic_move",
		zap.String("backend", backend),
		zap.String("game_id", g.ID),
		zap.String("user_id", strings.TrimSpace(userID)),
		zap.String("from", res.From.String()),
		zap.String("to", res.To.String()),
		zap.String("turn", string(g.Turn)),
		zap.Int("ply", len(g.Moves)),
		zap.String("status", string(g.Status)),
	)
	if res.Captured {
		rec.Explosion(len(res.Cleared), res.KingDestroyed)
		log.Info("atomic_explosion",
			zap.String("game_id", g.ID),
			zap.String("at", res.To.String()),
			zap.Strings("cleared", g.LastCleared),
			zap.Bool("king_destroyed", res.KingDestroyed),
		)
	}
	if g.Status != StatusActive {
		rec.GameFinished(string(g.Status))
	}
}

// PersistResult archives g through repo when the game is over. Failures are logged and returned.
func PersistResult(ctx context.Context, repo ResultRepository, g *Game) error {
	if repo == nil || g == nil || g.Status == StatusActive {
		return nil
	}
	method := g.ResultMethod()
	if err := repo.SaveResult(ctx, g, method); err != nil {
		obslog.L().Error("atomic_result_persist_error", zap.String("game_id", g.ID), zap.String("outcome", g.Outcome), zap.Error(err))
		return err
	}
	obslog.L().Info("atomic_result_persist", zap.String("game_id", g.ID), zap.String("outcome", g.Outcome), zap.String("method", method))
	return nil
}
