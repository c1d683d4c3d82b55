// Package apply turns a resolved answer into what to do with the form on
// screen: which choices to tick, what to type, how to number pairs.
package apply

import (
	"context"
	"errors"
	"fmt"

	"github.com/mind-engage/quizsense/internal/answer"
)

var ErrInvalidForm = errors.New("invalid form")

// Form describes the inputs a question offers.
type Form struct {
	Choices []string `json:"choices,omitempty"`
	Inputs  int      `json:"inputs,omitempty"`
	Left    []string `json:"left,omitempty"`
	Right   []string `json:"right,omitempty"`
}

// Numbered is one association to mark: Right gets label Number.
type Numbered struct {
	Left   string `json:"left"`
	Right  string `json:"right"`
	Number int    `json:"number"`
}

// Plan is the outcome for a single question.
type Plan struct {
	Selected []int      `json:"selected,omitempty"` // indices into Form.Choices
	Fills    []string   `json:"fills,omitempty"`    // one per text input, in order
	Order    []Numbered `json:"order,omitempty"`
}

// Empty reports whether the plan does nothing.
func (p Plan) Empty() bool {
	return len(p.Selected) == 0 && len(p.Fills) == 0 && len(p.Order) == 0
}

// Strategy plans one kind of answer.
type Strategy interface {
	Plan(ctx context.Context, a answer.Answer, f Form) (Plan, error)
}

// Planner routes by answer kind to the matching Strategy.
type Planner interface {
	Plan(ctx context.Context, a answer.Answer, f Form) (Plan, error)
}

type defaultPlanner struct {
	strategies map[answer.Kind]Strategy
}

func (p *defaultPlanner) Plan(ctx context.Context, a answer.Answer, f Form) (Plan, error) {
	if err := ctx.Err(); err != nil {
		return Plan{}, err
	}
	if f.Inputs < 0 {
		return Plan{}, fmt.Errorf("%w: %d inputs", ErrInvalidForm, f.Inputs)
	}
	s, ok := p.strategies[a.Kind()]
	if !ok {
		return Plan{}, nil
	}
	return s.Plan(ctx, a, f)
}

// Planner options

type Option func(*config)

type config struct {
	MaxEditDistance  int     // 0 keeps matching exact
	NumericTolerance float64 // negative disables numeric matching
}

func WithMaxEditDistance(n int) Option      { return func(c *config) { c.MaxEditDistance = n } }
func WithNumericTolerance(t float64) Option { return func(c *config) { c.NumericTolerance = t } }

// New installs the built-in strategies.
func New(opts ...Option) Planner {
	cfg := &config{NumericTolerance: -1}
	for _, o := range opts {
		o(cfg)
	}
	m := matcher{maxEdit: cfg.MaxEditDistance, tol: cfg.NumericTolerance}
	return &defaultPlanner{
		strategies: map[answer.Kind]Strategy{
			answer.KindSingle:   choiceStrategy{m: m},
			answer.KindMultiple: choiceStrategy{m: m},
			answer.KindMapping:  associationStrategy{},
		},
	}
}

// --- Strategies ---

// choiceStrategy ticks every choice matching a candidate and types the
// candidates into the text inputs in order.
type choiceStrategy struct{ m matcher }

func (s choiceStrategy) Plan(_ context.Context, a answer.Answer, f Form) (Plan, error) {
	var p Plan
	cands := a.Candidates()
	for i, c := range f.Choices {
		for _, want := range cands {
			if s.m.match(want, c) {
				p.Selected = append(p.Selected, i)
				break
			}
		}
	}
	for i := 0; i < f.Inputs && i < len(cands); i++ {
		p.Fills = append(p.Fills, cands[i])
	}
	return p, nil
}

// associationStrategy numbers the right-hand items in the order their
// left-hand partners appear.
type associationStrategy struct{}

func (associationStrategy) Plan(_ context.Context, a answer.Answer, f Form) (Plan, error) {
	var p Plan
	right := toSet(f.Right)
	n := 1
	for _, l := range f.Left {
		want, ok := a.Lookup(trim(l))
		if !ok {
			continue
		}
		if _, ok := right[trim(want)]; !ok {
			continue
		}
		p.Order = append(p.Order, Numbered{Left: l, Right: want, Number: n})
		n++
	}
	return p, nil
}

// helpers

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[trim(s)] = struct{}{}
	}
	return m
}
