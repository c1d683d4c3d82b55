// Package resolver answers a question: the answer key first, then the
// recognizers in their fixed order. The first hit wins.
package resolver

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/mind-engage/quizsense/internal/answer"
	"github.com/mind-engage/quizsense/internal/answerkey"
	"github.com/mind-engage/quizsense/internal/recognize"
)

// Sources that are not recognizer names.
const (
	SourceAnswerKey = "answer_key"
	SourceNone      = "none"
)

// Resolution is an answer together with what produced it.
type Resolution struct {
	Answer answer.Answer `json:"answer"`
	Source string        `json:"source"`
}

// Observer is told about every resolution, cached or not.
type Observer interface {
	ObserveResolution(source string, elapsed time.Duration)
}

type Option func(*config)

type config struct {
	recognizers []recognize.Recognizer
	logger      *zap.Logger
	cacheSize   int
	observer    Observer
}

// WithRecognizers replaces the default trial order.
func WithRecognizers(rs ...recognize.Recognizer) Option {
	return func(c *config) { c.recognizers = rs }
}

func WithLogger(l *zap.Logger) Option { return func(c *config) { c.logger = l } }

// WithCache keeps the last n recognizer results. n <= 0 disables it.
func WithCache(n int) Option { return func(c *config) { c.cacheSize = n } }

func WithObserver(o Observer) Option { return func(c *config) { c.observer = o } }

// Dispatcher is immutable once built and safe for concurrent use.
type Dispatcher struct {
	key         *answerkey.Key
	recognizers []recognize.Recognizer
	log         *zap.Logger
	cache       *lru.Cache[string, Resolution]
	observer    Observer
}

// New builds a dispatcher over key. A nil key behaves like an empty one.
func New(key *answerkey.Key, opts ...Option) *Dispatcher {
	if key == nil {
		key = answerkey.Empty()
	}
	cfg := &config{logger: zap.NewNop()}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.recognizers == nil {
		cfg.recognizers = recognize.DefaultOrder(key)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	d := &Dispatcher{
		key:         key,
		recognizers: append([]recognize.Recognizer(nil), cfg.recognizers...),
		log:         cfg.logger,
		observer:    cfg.observer,
	}
	if cfg.cacheSize > 0 {
		// only fails for a non-positive size
		d.cache, _ = lru.New[string, Resolution](cfg.cacheSize)
	}
	return d
}

// Key is the answer key the dispatcher was built with.
func (d *Dispatcher) Key() *answerkey.Key { return d.key }

// Recognizers lists the trial order by name.
func (d *Dispatcher) Recognizers() []string { return recognize.Names(d.recognizers) }

// Resolve returns the answer for q, or answer.None().
func (d *Dispatcher) Resolve(q answer.Question) answer.Answer {
	return d.Explain(q).Answer
}

// Explain is Resolve plus the name of whatever produced the answer.
func (d *Dispatcher) Explain(q answer.Question) Resolution {
	start := time.Now()
	r := d.explain(q)
	if d.observer != nil {
		d.observer.ObserveResolution(r.Source, time.Since(start))
	}
	d.log.Debug("resolved",
		zap.String("source", r.Source),
		zap.Stringer("kind", r.Answer.Kind()),
		zap.Bool("has_code", q.HasCode()))
	return r
}

func (d *Dispatcher) explain(q answer.Question) Resolution {
	if a, ok := d.key.Lookup(q.Text); ok {
		return Resolution{Answer: a, Source: SourceAnswerKey}
	}
	ck := q.Text + "\x00" + q.Code
	if d.cache != nil {
		if r, ok := d.cache.Get(ck); ok {
			return r
		}
	}
	r := Resolution{Answer: answer.None(), Source: SourceNone}
	for _, rec := range d.recognizers {
		if a, ok := d.try(rec, q); ok && !a.IsNone() {
			r = Resolution{Answer: a, Source: rec.Name()}
			break
		}
	}
	if d.cache != nil {
		d.cache.Add(ck, r)
	}
	return r
}

// try runs one recognizer; a panic means it does not apply.
func (d *Dispatcher) try(rec recognize.Recognizer, q answer.Question) (a answer.Answer, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			d.log.Debug("recognizer panicked",
				zap.String("recognizer", rec.Name()),
				zap.String("panic", fmt.Sprint(p)))
			a, ok = answer.None(), false
		}
	}()
	return rec.Recognize(q)
}
