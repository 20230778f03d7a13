package knolus

import (
	"context"
	"io"
	"log/slog"
)

// runState is shared by every Context of one run.
type runState struct {
	steps  int
	quota  int
	calls  int
	logger *slog.Logger
}

func newRunState(quota int, logger *slog.Logger) *runState {
	if logger == nil {
		logger = discardLogger
	}
	return &runState{quota: quota, logger: logger}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// step charges one unit of work to the run and reports quota exhaustion or
// cancellation of ctx.
func (s *runState) step(ctx context.Context) *Failure {
	s.steps++
	if s.quota > 0 && s.steps > s.quota {
		return Errorf(LimitStepQuota, "step quota exceeded (%d)", s.quota)
	}
	if ctx != nil {
		select {
		case <-ctx.Done():
			return newThrown(Cancelled, ctx.Err(), nil)
		default:
		}
	}
	return nil
}

// flattenLimit bounds the evaluations a single flatten may chain, so a value
// that keeps producing runtime values cannot spin forever on an unlimited run.
const flattenLimit = 4096
