// Package kb implements Knuth-Bendix completion over a string rewriting
// system derived from a presentation's defining relations (spec §4.D). The
// engine maintains an active/pending rule set (package rewrite), rewrites
// words to normal form against the active set, and generates and resolves
// critical pairs (overlaps) until either no new overlap is found (confluent)
// or a configured bound is reached.
package kb

import (
	"github.com/coregx/congru/presentation"
	"github.com/coregx/congru/rewrite"
	"github.com/coregx/congru/runner"
)

// Engine runs Knuth-Bendix completion against a presentation. The zero value
// is not usable; construct with New.
type Engine struct {
	runner.Runner

	pres  *presentation.Presentation
	store *rewrite.Store
	order Order
	cfg   Config

	started bool

	confluentCache     presentation.Tri
	overlapsSinceCheck int
	overlapsTotal      uint64

	gilman *GilmanGraph
}

// New builds an engine over pres's rules, using order to orient rules (nil
// defaults to ShortLex) and cfg to bound completion. The presentation's
// existing rules are staged as pending; nothing is rewritten until Run is
// called.
func New(pres *presentation.Presentation, order Order, cfg Config) (*Engine, error) {
	if pres == nil || pres.Alphabet() == nil {
		return nil, presentation.ErrAlphabetNotSet
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if order == nil {
		order = ShortLex{}
	}
	e := &Engine{
		pres:  pres,
		store: rewrite.NewStore(pres.Alphabet().Size()),
		order: order,
		cfg:   cfg,
	}
	for _, r := range pres.Rules() {
		if err := e.AddRule(r.Lhs, r.Rhs); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// NewDefault builds an engine over pres with ShortLex ordering and
// DefaultConfig.
func NewDefault(pres *presentation.Presentation) (*Engine, error) {
	return New(pres, ShortLex{}, DefaultConfig())
}

// SetReporting arms a progress callback, invoked from the goroutine running
// Run at most once per ctx.Interval. A nil ctx disables reporting.
func (e *Engine) SetReporting(ctx *runner.ReportingContext) {
	e.Runner.Configure(ctx)
}

// AddRule stages (u, v) as a rule awaiting processing, validating both
// sides against the presentation's alphabet. Returns presentation.
// ErrAlreadyStarted if Run has already been called.
func (e *Engine) AddRule(u, v Word) error {
	if e.started {
		return presentation.ErrAlreadyStarted
	}
	if err := e.pres.ValidateRule(u, v); err != nil {
		return err
	}
	lhs, rhs := reorder(e.order, u.Clone(), v.Clone())
	r := e.store.NewRule()
	r.Lhs, r.Rhs = lhs, rhs
	e.store.PushPending(r)
	e.invalidateConfluence()
	return nil
}

func (e *Engine) invalidateConfluence() {
	e.confluentCache = presentation.TriUnknown
	e.gilman = nil
}

// Rewrite reduces w to its normal form with respect to the current active
// rule set.
func (e *Engine) Rewrite(w Word) Word {
	return e.rewrite(w)
}

// EqualTo reports whether u and v rewrite to the same normal form.
func (e *Engine) EqualTo(u, v Word) bool {
	return e.rewrite(u).Equal(e.rewrite(v))
}

// rewrite is the sliding-window algorithm of spec §4.D: advance one letter
// at a time, and after each advance repeatedly reduce the longest active
// suffix of the word built so far. Terminates because every reduction
// strictly decreases the word under order.
func (e *Engine) rewrite(w Word) Word {
	v := make(Word, 0, len(w))
	for _, a := range w {
		v = append(v, a)
		for {
			r, ok := e.store.LongestActiveSuffix(v)
			if !ok {
				break
			}
			v = v[:len(v)-len(r.Lhs)]
			v = append(v, r.Rhs...)
		}
	}
	return v
}

// Confluent reports whether the current active rule set is confluent,
// caching the result until the next rule change (AddRule, or a completion
// step that activates or deactivates a rule).
func (e *Engine) Confluent() (bool, error) {
	if e.confluentCache != presentation.TriUnknown {
		return e.confluentCache == presentation.TriYes, nil
	}
	rules := e.store.ActiveRules()
	for i, u := range rules {
		for j, v := range rules {
			if i == j {
				continue
			}
			maxB := len(u.Lhs) - 1
			if len(v.Lhs) < maxB {
				maxB = len(v.Lhs)
			}
			for b := 1; b <= maxB; b++ {
				suffix := u.Lhs[len(u.Lhs)-b:]
				if !isPrefixWord(suffix, v.Lhs) {
					continue
				}
				left := e.rewrite(u.Lhs[:len(u.Lhs)-b].Append(v.Rhs))
				right := e.rewrite(u.Rhs.Append(v.Lhs[b:]))
				if !left.Equal(right) {
					e.confluentCache = presentation.TriNo
					return false, nil
				}
			}
		}
	}
	e.confluentCache = presentation.TriYes
	return true, nil
}

// Run drives completion to a natural stopping point: confluence, or
// cfg.MaxRules active rules reached. Returns presentation.ErrUndecidable if
// interrupted by Kill or a deadline before either was reached.
func (e *Engine) Run() error {
	if e.started {
		return presentation.ErrAlreadyStarted
	}
	e.started = true
	e.Runner.Run(e.step)
	if e.Runner.Killed() || e.Runner.TimedOut() {
		return presentation.ErrUndecidable
	}
	return nil
}

// RunUntil drives completion like Run, but also stops as soon as pred
// returns true, checked once per step (spec §4.I "runners cooperatively
// check pred() in their own loops").
func (e *Engine) RunUntil(pred func() bool) error {
	if e.started {
		return presentation.ErrAlreadyStarted
	}
	e.started = true
	e.Runner.RunUntil(pred, e.step)
	if e.Runner.Killed() || e.Runner.TimedOut() {
		return presentation.ErrUndecidable
	}
	return nil
}

func (e *Engine) step() bool {
	e.drainPending()
	if e.Runner.Killed() || e.Runner.TimedOut() {
		return false
	}
	if uint64(e.store.ActiveLen()) >= e.cfg.MaxRules {
		e.Runner.SetSuccess(false)
		return true
	}
	found := e.generateOverlapsPass()
	if found == 0 {
		e.confluentCache = presentation.TriYes
		e.Runner.SetSuccess(true)
		return true
	}
	e.overlapsSinceCheck += found
	if e.overlapsSinceCheck >= e.cfg.CheckConfluenceInterval {
		e.overlapsSinceCheck = 0
		if ok, _ := e.Confluent(); ok {
			e.Runner.SetSuccess(true)
			return true
		}
	}
	return false
}

// drainPending processes the pending stack to exhaustion: each popped rule
// is rewritten, reoriented, and — unless it turned out trivial — used to
// deactivate any active rule it subsumes (lhs containment, spec §4.D step
// 2) before being activated itself.
func (e *Engine) drainPending() {
	for e.store.PendingLen() > 0 {
		if e.Runner.Killed() || e.Runner.TimedOut() {
			return
		}
		r := e.store.PopPending()
		r.Lhs = e.rewrite(r.Lhs)
		r.Rhs = e.rewrite(r.Rhs)
		r.Lhs, r.Rhs = reorder(e.order, r.Lhs, r.Rhs)
		if r.Lhs.Equal(r.Rhs) {
			e.store.Discard(r)
			continue
		}

		cur := e.store.Active()
		for cur.Valid() {
			active := cur.Rule()
			if containsSubstring(active.Lhs, r.Lhs) {
				active.Rhs = e.rewrite(active.Rhs)
				e.store.Deactivate(cur)
				e.store.PushPending(active)
				continue
			}
			cur.Next()
		}
		e.store.AddActive(r)
		e.invalidateConfluence()
	}
}

// generateOverlapsPass forms the critical pair for every ordered pair of
// distinct active rules (u, v) and every proper suffix of u.Lhs that is a
// prefix of v.Lhs, subject to cfg.OverlapPolicy / cfg.MaxOverlap, pushes
// each surviving pair as a pending rule, and drains. Returns the number of
// overlaps examined (passing the filter or not), the unit spec §4.D's
// CheckConfluenceInterval counts against.
func (e *Engine) generateOverlapsPass() int {
	rules := e.store.ActiveRules()
	count := 0
	for i, u := range rules {
		if e.Runner.Killed() || e.Runner.TimedOut() {
			break
		}
		for j, v := range rules {
			if i == j {
				continue
			}
			if e.Runner.Killed() || e.Runner.TimedOut() {
				break
			}
			maxB := len(u.Lhs) - 1
			if len(v.Lhs) < maxB {
				maxB = len(v.Lhs)
			}
			for b := 1; b <= maxB; b++ {
				suffix := u.Lhs[len(u.Lhs)-b:]
				if !isPrefixWord(suffix, v.Lhs) {
					continue
				}
				count++
				if e.overlapExceeds(u.Lhs, v.Lhs, b) {
					continue
				}
				r := e.store.NewRule()
				r.Lhs = u.Lhs[:len(u.Lhs)-b].Append(v.Rhs)
				r.Rhs = u.Rhs.Append(v.Lhs[b:])
				e.store.PushPending(r)
			}
		}
	}
	e.overlapsTotal += uint64(count)
	e.drainPending()
	return count
}

// overlapExceeds reports whether the overlap of u.Lhs and v.Lhs at offset b
// (u.Lhs's trailing b letters equal v.Lhs's leading b letters) exceeds
// cfg.MaxOverlap under cfg.OverlapPolicy.
func (e *Engine) overlapExceeds(uLhs, vLhs Word, b int) bool {
	if e.cfg.MaxOverlap == presentation.Unbounded {
		return false
	}
	var measure uint64
	switch e.cfg.OverlapPolicy {
	case ABC:
		lenA := len(uLhs) - b
		lenC := len(vLhs) - b
		measure = uint64(lenA + b + lenC)
	case ABBC:
		measure = uint64(len(uLhs) + len(vLhs))
	case MaxABBC:
		m := len(uLhs)
		if len(vLhs) > m {
			m = len(vLhs)
		}
		measure = uint64(m)
	}
	return measure > e.cfg.MaxOverlap
}

func isPrefixWord(prefix, whole Word) bool {
	if len(prefix) > len(whole) {
		return false
	}
	for i := range prefix {
		if prefix[i] != whole[i] {
			return false
		}
	}
	return true
}

func containsSubstring(hay, needle Word) bool {
	if len(needle) > len(hay) {
		return false
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
