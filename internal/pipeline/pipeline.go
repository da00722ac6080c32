// Package pipeline is the two-phase update: every keystroke runs a
// synchronous fast path immediately, and when the model is available and
// AI-first mode is selected, a background neural job is dispatched tagged
// with a monotonic generation counter. A result is applied only if the
// counter has not advanced since dispatch; otherwise it is discarded in
// full. This is the sole mechanism guarding against a slow model call
// clobbering newer keystrokes' results.
//
// The design calls for a worker with an enlarged (>=8MB) stack, since
// beam search can deepen the call stack past a default thread's budget on
// some platforms. Go goroutines start with a small (2-8KB) stack that
// grows on demand up to a high default ceiling, so a literal "spawn a
// thread with an 8MB stack per job" requirement is moot here: a single
// long-lived worker goroutine reading off a channel gives the same
// ordering and cancellation guarantees with no per-job spawn cost.
package pipeline

import (
	"context"
	"log"
	"sync"

	"github.com/sourcegraph/conc/panics"

	"github.com/aipinyin/engine/internal/types"
)

// Job is one unit of background work: compute the AI-derived candidate
// list for raw/context under Generation; the worker reports the outcome
// as a Result on the Results channel.
type Job struct {
	Generation uint64
	Raw        string
	Context    string
	Compute    func(ctx context.Context) []types.Candidate
}

// Result is what a completed job reports back to the UI thread.
type Result struct {
	Generation uint64
	Raw        string
	Candidates []types.Candidate
}

// Pipeline owns the generation counter and the single background worker.
// The hook thread never blocks on it: Dispatch only sends on a buffered
// channel sized 1, and coalesces by draining a stale pending job first.
type Pipeline struct {
	mu         sync.Mutex
	generation uint64

	jobs    chan Job
	results chan Result
	logger  *log.Logger

	cancel context.CancelFunc
}

const jobQueueDepth = 1

// New starts the pipeline's single worker goroutine, reading from an
// internal job queue and writing completions to a caller-drained results
// channel.
func New(logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		jobs:    make(chan Job, jobQueueDepth),
		results: make(chan Result, jobQueueDepth),
		logger:  logger,
		cancel:  cancel,
	}
	go p.run(ctx)
	return p
}

// Generation returns the current generation counter value.
func (p *Pipeline) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// Dispatch bumps the generation counter and enqueues a job capturing the
// new value. If a job is already queued (the worker hasn't picked it up
// yet), Dispatch coalesces by draining it first: the old job's generation
// is already stale, so it would self-discard anyway, but skipping it
// outright means the worker spends no cycles on now-irrelevant work.
func (p *Pipeline) Dispatch(raw, context_ string, compute func(ctx context.Context) []types.Candidate) uint64 {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	job := Job{Generation: gen, Raw: raw, Context: context_, Compute: compute}

	select {
	case p.jobs <- job:
	default:
		select {
		case <-p.jobs:
		default:
		}
		select {
		case p.jobs <- job:
		default:
			p.logger.Printf("pipeline: dropped job for generation %d, worker saturated", gen)
		}
	}
	return gen
}

// Results returns the channel the UI thread should drain for completed
// jobs. Every Result still carries its Generation; callers must re-check
// it against the current Generation() before applying it, since it may
// have been queued before the most recent Dispatch.
func (p *Pipeline) Results() <-chan Result {
	return p.results
}

// Apply reports whether a result is still current (its generation matches
// the pipeline's latest) and should be applied to the view. A false
// return means the caller must discard the result in full.
func (p *Pipeline) Apply(r Result) bool {
	return r.Generation == p.Generation()
}

// Close stops the worker goroutine. Safe to call once.
func (p *Pipeline) Close() {
	p.cancel()
}

func (p *Pipeline) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			p.runJob(ctx, job)
		}
	}
}

func (p *Pipeline) runJob(ctx context.Context, job Job) {
	if !p.Apply(Result{Generation: job.Generation}) {
		return // already stale before we even started; don't bother the model.
	}

	var catcher panics.Catcher
	var candidates []types.Candidate
	catcher.Try(func() {
		candidates = job.Compute(ctx)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		p.logger.Printf("pipeline: job panicked: generation=%d recover=%v", job.Generation, recovered)
		return
	}

	select {
	case p.results <- Result{Generation: job.Generation, Raw: job.Raw, Candidates: candidates}:
	case <-ctx.Done():
	}
}
