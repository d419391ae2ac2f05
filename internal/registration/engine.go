package registration

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/scanalign/internal/geom"
	"github.com/banshee-data/scanalign/internal/monitoring"
	"github.com/banshee-data/scanalign/internal/timeutil"
)

// Config holds the engine parameters.
type Config struct {
	// MinOverlap is the number of coincident beacons needed for a match.
	MinOverlap int
	// Workers bounds the number of rotation trials run concurrently for one
	// candidate. 1 (or 0) searches sequentially.
	Workers int
}

// DefaultConfig returns the default engine parameters.
func DefaultConfig() Config {
	return Config{MinOverlap: DefaultMinOverlap, Workers: 1}
}

// Validate checks that the configuration can drive a registration.
func (c Config) Validate() error {
	if c.MinOverlap < 1 {
		return fmt.Errorf("min overlap must be at least 1, got %d", c.MinOverlap)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

// Result is the outcome of a successful registration.
type Result struct {
	// Aligned lists scanners in the order they were aligned; the anchor is first.
	Aligned []AlignedScanner
	// Sweeps is the number of passes over the pending queue.
	Sweeps int
	// Trials is the number of matcher invocations.
	Trials int64
	// Duration is the wall time spent in Align.
	Duration time.Duration
}

// Positions maps scanner id to global position.
func (r *Result) Positions() map[int]geom.Point {
	out := make(map[int]geom.Point, len(r.Aligned))
	for _, s := range r.Aligned {
		out[s.ID] = s.Position
	}
	return out
}

// Engine registers scanners into the frame of the first one.
type Engine struct {
	group   geom.RotationGroup
	matcher Matcher
	workers int
	clock   timeutil.Clock
}

// NewEngine creates an engine over an already validated rotation group.
func NewEngine(group geom.RotationGroup, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(group) == 0 {
		return nil, fmt.Errorf("%w: empty rotation group", geom.ErrMalformedGroup)
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		group:   group,
		matcher: Matcher{MinOverlap: cfg.MinOverlap},
		workers: workers,
		clock:   timeutil.RealClock{},
	}, nil
}

// SetClock replaces the clock used to time runs.
func (e *Engine) SetClock(c timeutil.Clock) {
	e.clock = c
}

// candidate is a pending scanner with its beacons pre-rotated by every
// member of the group, indexed like the group.
type candidate struct {
	id      int
	rotated [][]geom.Point
}

// match is a successful search for one candidate.
type match struct {
	rotation    int
	reference   int // index into aligned
	translation geom.Point
	votes       int
}

// missKey records a (candidate, reference) pair that failed under every
// rotation. Beacon sets never change, so the pair can never match later.
type missKey struct {
	candidate int
	reference int
}

// Align registers every scanner into the anchor's frame. The first scanner
// is the anchor at the origin. Pending scanners are swept in input order;
// each is tried against every aligned scanner under every rotation, stopping
// at the first match. A sweep that aligns nothing fails with *AlignmentError.
func (e *Engine) Align(ctx context.Context, scanners []Scanner) (*Result, error) {
	if len(scanners) == 0 {
		return nil, ErrNoScanners
	}
	if err := validateScanners(scanners); err != nil {
		return nil, err
	}

	start := e.clock.Now()
	aligned := make([]AlignedScanner, 0, len(scanners))
	aligned = append(aligned, anchorOf(scanners[0]))

	pending := make([]*candidate, 0, len(scanners)-1)
	for _, s := range scanners[1:] {
		c := &candidate{id: s.ID, rotated: make([][]geom.Point, len(e.group))}
		for i, r := range e.group {
			c.rotated[i] = geom.RotateAll(r, s.Beacons)
		}
		pending = append(pending, c)
	}

	res := &Result{}
	misses := make(map[missKey]struct{})

	for len(pending) > 0 {
		res.Sweeps++
		progress := false
		remaining := pending[:0]

		for _, c := range pending {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			m, ok, trials, err := e.search(ctx, c, aligned, misses)
			res.Trials += trials
			if err != nil {
				return nil, err
			}
			if !ok {
				for _, ref := range aligned {
					misses[missKey{candidate: c.id, reference: ref.ID}] = struct{}{}
				}
				remaining = append(remaining, c)
				continue
			}

			ref := aligned[m.reference]
			s := AlignedScanner{
				ID:            c.id,
				Position:      ref.Position.Add(m.translation),
				Rotation:      e.group[m.rotation],
				Beacons:       c.rotated[m.rotation],
				RotationIndex: m.rotation,
				ReferenceID:   ref.ID,
			}
			aligned = append(aligned, s)
			progress = true
			monitoring.Diagf("scanner %d aligned via scanner %d: rotation=%d votes=%d position=%s",
				s.ID, ref.ID, m.rotation, m.votes, s.Position)
		}

		pending = remaining
		monitoring.Tracef("sweep %d: aligned=%d pending=%d trials=%d",
			res.Sweeps, len(aligned), len(pending), res.Trials)

		if !progress {
			ids := make([]int, len(pending))
			for i, c := range pending {
				ids[i] = c.id
			}
			err := &AlignmentError{Pending: ids, Aligned: len(aligned), Sweeps: res.Sweeps}
			monitoring.Opsf("registration failed: %v", err)
			return nil, err
		}
	}

	res.Aligned = aligned
	res.Duration = e.clock.Since(start)
	monitoring.Diagf("registered %d scanners in %d sweeps (%d trials, %s)",
		len(aligned), res.Sweeps, res.Trials, res.Duration)
	return res, nil
}

// search looks for the first (rotation, reference) pair that matches c,
// rotations outermost, references in alignment order.
func (e *Engine) search(ctx context.Context, c *candidate, aligned []AlignedScanner, misses map[missKey]struct{}) (match, bool, int64, error) {
	refs := make([]int, 0, len(aligned))
	for i, ref := range aligned {
		if _, missed := misses[missKey{candidate: c.id, reference: ref.ID}]; !missed {
			refs = append(refs, i)
		}
	}
	if len(refs) == 0 {
		return match{}, false, 0, nil
	}
	if e.workers > 1 {
		return e.searchParallel(ctx, c, aligned, refs)
	}

	var trials int64
	for ri, rotated := range c.rotated {
		for _, i := range refs {
			trials++
			if t, votes, ok := e.matcher.Match(aligned[i].Beacons, rotated); ok {
				return match{rotation: ri, reference: i, translation: t, votes: votes}, true, trials, nil
			}
		}
	}
	return match{}, false, trials, nil
}

// searchParallel runs rotation trials concurrently and keeps the match with
// the lowest rotation index, which is the one the sequential search finds.
// Rotations above the best index found so far are skipped.
func (e *Engine) searchParallel(ctx context.Context, c *candidate, aligned []AlignedScanner, refs []int) (match, bool, int64, error) {
	found := make([]*match, len(c.rotated))
	var best atomic.Int64
	best.Store(int64(len(c.rotated)))
	var trials atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for ri := range c.rotated {
		ri := ri
		g.Go(func() error {
			for _, i := range refs {
				if err := gctx.Err(); err != nil {
					return err
				}
				if int64(ri) > best.Load() {
					return nil
				}
				trials.Add(1)
				t, votes, ok := e.matcher.Match(aligned[i].Beacons, c.rotated[ri])
				if !ok {
					continue
				}
				found[ri] = &match{rotation: ri, reference: i, translation: t, votes: votes}
				for {
					cur := best.Load()
					if int64(ri) >= cur || best.CompareAndSwap(cur, int64(ri)) {
						break
					}
				}
				return nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return match{}, false, trials.Load(), err
	}

	for _, m := range found {
		if m != nil {
			return *m, true, trials.Load(), nil
		}
	}
	return match{}, false, trials.Load(), nil
}

func validateScanners(scanners []Scanner) error {
	seen := make(map[int]struct{}, len(scanners))
	for _, s := range scanners {
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidScanner, s.ID)
		}
		seen[s.ID] = struct{}{}
		if len(s.Beacons) == 0 {
			return fmt.Errorf("%w: scanner %d has no beacons", ErrInvalidScanner, s.ID)
		}
	}
	return nil
}
