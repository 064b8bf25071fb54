package pipeline

import (
	"context"
	"time"

	"github.com/factseek/factseek/internal/model"
	"github.com/factseek/factseek/internal/verify"
	"github.com/factseek/factseek/internal/worker"
)

// claimJob verifies one claim inside the worker pool. The claim's budget is
// the parent context plus the per-claim deadline; pool shutdown cancels it
// early.
type claimJob struct {
	idx      int
	claim    model.Claim
	verifier *verify.Verifier
	parent   context.Context
	deadline time.Duration
}

func (j *claimJob) Index() int { return j.idx }

func (j *claimJob) Execute(poolCtx context.Context) worker.Result {
	ctx := j.parent
	var cancel context.CancelFunc
	if j.deadline > 0 {
		ctx, cancel = context.WithTimeout(ctx, j.deadline)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	stop := context.AfterFunc(poolCtx, cancel)
	defer stop()

	return &claimResult{
		idx:     j.idx,
		verdict: j.verifier.Verify(ctx, j.claim),
	}
}

// claimResult carries a resolved verdict back to its claim's slot
type claimResult struct {
	idx     int
	verdict model.Verdict
}

func (r *claimResult) Index() int      { return r.idx }
func (r *claimResult) GetError() error { return nil }
