package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Engine runs a complete scan: discovery, sampling, validation and
// aggregation, followed by report assembly.
type Engine struct {
	Root      string
	Extension string
	// Workers bounds how many shards are sampled at once; <= 1 is sequential.
	Workers int
	TopN    int
	// Location decides calendar days; nil means time.Local.
	Location *time.Location
	Logger   zerolog.Logger
}

// partial is one shard's contribution.
type partial struct {
	main, sub *Bucket
	accepted  map[Role]int
	rejected  map[RejectReason]int
}

func newPartial() *partial {
	return &partial{
		main:     NewBucket(),
		sub:      NewBucket(),
		accepted: make(map[Role]int),
		rejected: make(map[RejectReason]int),
	}
}

func (p *partial) merge(other *partial) {
	p.main.Merge(other.main)
	p.sub.Merge(other.sub)
	for r, n := range other.accepted {
		p.accepted[r] += n
	}
	for r, n := range other.rejected {
		p.rejected[r] += n
	}
}

// Run scans the projects root and returns the result. Per-file failures
// never surface; the only error is ctx.Err() when ctx is cancelled, and
// then no result is returned.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	scanner := &Scanner{Root: e.Root, Extension: e.Extension, Logger: e.Logger}
	candidates, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}

	shards := shard(candidates, e.Workers)
	partials := make([]*partial, len(shards))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Workers, 1))
	for i, batch := range shards {
		g.Go(func() error {
			p := newPartial()
			for _, c := range batch {
				if err := gctx.Err(); err != nil {
					return err
				}
				e.process(c, p)
			}
			partials[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newPartial()
	for _, p := range partials {
		total.merge(p)
	}

	res := &Result{
		Report: BuildReport(total.main, total.sub, e.TopN),
		Main:   total.main,
		Sub:    total.sub,
		Stats: ScanStats{
			Candidates: countRoles(candidates),
			Accepted:   total.accepted,
			Rejected:   total.rejected,
			Duration:   time.Since(started),
		},
	}

	e.Logger.Debug().
		Int("candidates", len(candidates)).
		Int("main_sessions", total.main.SessionCount).
		Int("sub_sessions", total.sub.SessionCount).
		Dur("took", res.Stats.Duration).
		Msg("scan complete")

	return res, nil
}

func (e *Engine) process(c SessionCandidate, p *partial) {
	var (
		rec BoundaryRecord
		ok  bool
	)
	// Undersized files are rejected without opening them.
	if ValidateSize(c.SizeBytes) == RejectNone {
		rec, ok = SampleBoundary(c.Path)
	}

	s, reason := Validate(c, rec, ok)
	if reason != RejectNone {
		p.rejected[reason]++
		e.Logger.Trace().Str("file", c.Path).Stringer("reason", reason).Msg("session rejected")
		return
	}

	p.accepted[c.Role]++
	if c.Role == RoleSub {
		p.sub.Fold(s, e.Location)
	} else {
		p.main.Fold(s, e.Location)
	}
}

// shard splits candidates into at most n contiguous batches, keeping
// discovery order inside and across batches.
func shard(candidates []SessionCandidate, n int) [][]SessionCandidate {
	if len(candidates) == 0 {
		return nil
	}
	if n <= 1 {
		return [][]SessionCandidate{candidates}
	}
	size := (len(candidates) + n - 1) / n
	var out [][]SessionCandidate
	for start := 0; start < len(candidates); start += size {
		end := min(start+size, len(candidates))
		out = append(out, candidates[start:end])
	}
	return out
}

func countRoles(candidates []SessionCandidate) map[Role]int {
	counts := map[Role]int{RoleMain: 0, RoleSub: 0}
	for _, c := range candidates {
		counts[c.Role]++
	}
	return counts
}
