package batch

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerwatch/log/v3"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/mmbconv/internal/arity"
	"github.com/funvibe/mmbconv/internal/config"
	"github.com/funvibe/mmbconv/internal/convert"
	"github.com/funvibe/mmbconv/internal/opcode"
	"github.com/funvibe/mmbconv/internal/pipeline"
	"github.com/funvibe/mmbconv/internal/stream"
)

// Result is the outcome of one job.
type Result struct {
	Name     string
	InitVars uint32
	Unify    []opcode.UnifyCommand
	Proof    []opcode.ProofCommand
	Encoded  []byte
	Err      error
}

// Runner converts jobs in parallel. Every job runs single-threaded; only
// independent jobs overlap.
type Runner struct {
	workers  int
	pipeline *pipeline.Pipeline
	logger   log.Logger
}

// NewRunner creates a runner. workers <= 0 means config.DefaultWorkers.
func NewRunner(arities arity.Lookup, workers int, strictHeap bool, logger log.Logger) *Runner {
	if workers <= 0 {
		workers = config.DefaultWorkers
	}
	var opts []convert.Option
	if strictHeap {
		opts = append(opts, convert.WithStrictHeap())
	}
	return &Runner{
		workers:  workers,
		pipeline: NewPipeline(arities, opts...),
		logger:   logger,
	}
}

// FromManifest builds a runner from a parsed manifest.
func FromManifest(m *config.Manifest, logger log.Logger) (*Runner, error) {
	arities, err := m.Arities()
	if err != nil {
		return nil, err
	}
	return NewRunner(arities, m.Workers, m.StrictHeap, logger), nil
}

// Run converts every job and returns the results in job order. A failed job
// is reported in its Result and does not stop the others; the returned error
// is only set when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, jobs []config.Job) ([]Result, error) {
	logger := r.logger.New("run", uuid.NewString())
	start := time.Now()
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.runJob(job, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	logger.Info("Batch finished", "jobs", len(jobs), "failed", failed, "workers", r.workers, "elapsed", time.Since(start))
	return results, nil
}

func (r *Runner) runJob(job config.Job, logger log.Logger) Result {
	res := Result{Name: job.Name, InitVars: job.InitVars}

	pctx, err := newContext(job)
	if err != nil {
		res.Err = err
		logger.Warn("Conversion failed", "job", job.Name, "err", err)
		return res
	}

	pctx = r.pipeline.Run(pctx)
	res.Unify, res.Proof, res.Encoded = pctx.Unify, pctx.Proof, pctx.Encoded
	if err := pctx.Err(); err != nil {
		res.Err = fmt.Errorf("job %s: %w", job.Name, err)
		logger.Warn("Conversion failed", "job", job.Name, "err", err)
		return res
	}
	logger.Debug("Converted", "job", job.Name, "unify", len(res.Unify), "proof", len(res.Proof), "bytes", len(res.Encoded))
	return res
}

func newContext(job config.Job) (*pipeline.Context, error) {
	pctx := &pipeline.Context{JobName: job.Name, InitVars: job.InitVars, Source: job.Unify}
	if job.Hex != "" {
		raw, err := DecodeHex(job.Hex)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", job.Name, err)
		}
		pctx.Raw = raw
	}
	return pctx, nil
}

// DecodeHex decodes a hex string, ignoring whitespace.
func DecodeHex(s string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return nil, fmt.Errorf("decoding hex: %w", err)
	}
	return raw, nil
}

// Bundle collects the successful results. It fails on the first failed job.
func Bundle(source string, results []Result) (*stream.Bundle, error) {
	b := stream.NewBundle(source)
	for _, res := range results {
		if res.Err != nil {
			return nil, res.Err
		}
		if err := b.Add(res.Name, res.InitVars, res.Encoded); err != nil {
			return nil, err
		}
	}
	return b, nil
}
