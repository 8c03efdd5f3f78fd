// Package reasoning turns a free-text support question into a ranked list
// of answers. The pipeline runs left to right on every call:
//
//	emergency check → symptom extraction → knowledge matching →
//	relevance filtering → advice fusion → ranking
//
// An Engine only reads its knowledge base and symptom registry, so one
// instance can serve concurrent callers.
package reasoning

import (
	"time"

	"techsupport-agent/knowledge"
	"techsupport-agent/types"

	"go.uber.org/zap"
)

// Options tunes an Engine. Zero values select defaults.
type Options struct {
	MaxAnswers            int
	ParallelScanThreshold int
	ScanWorkers           int
	Observer              Observer
}

// Observation summarises one Reason call for an Observer.
type Observation struct {
	Outcome    types.AnswerType
	Symptoms   []string
	Candidates int
	Accepted   int
	Duration   time.Duration
}

// Observer receives an Observation after every Reason call.
type Observer interface {
	Observe(Observation)
}

// Request is a single question with its optional metrics.
type Request struct {
	Question string
	Metrics  *types.SystemMetrics
	// MaxAnswers overrides the search depth and engine default when > 0.
	MaxAnswers int
}

// Result is the outcome of Reason. Symptoms is nil when the emergency
// check answered the question.
type Result struct {
	Answers   []types.Answer
	Symptoms  Symptoms
	Emergency bool
	Trace     *Trace
}

// Engine runs the reasoning pipeline.
type Engine struct {
	kb         *knowledge.Base
	registry   *Registry
	advisor    AdviceProvider
	matcher    *Matcher
	observer   Observer
	logger     *zap.Logger
	maxAnswers int
}

// NewEngine wires an engine. A nil registry selects the embedded one, a nil
// advisor selects knowledge.Rules and a nil kb behaves as an empty base.
func NewEngine(kb *knowledge.Base, registry *Registry, advisor AdviceProvider, logger *zap.Logger, opts Options) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if kb == nil {
		kb = knowledge.NewBase(nil)
	}
	if registry == nil {
		var err error
		if registry, err = DefaultRegistry(); err != nil {
			return nil, err
		}
	}
	if advisor == nil {
		advisor = knowledge.Rules{}
	}
	maxAnswers := opts.MaxAnswers
	if maxAnswers <= 0 {
		maxAnswers = DefaultMaxAnswers
	}

	logger.Info("Reasoning engine ready",
		zap.Int("kb_questions", kb.Len()),
		zap.Int("symptoms", registry.Len()),
		zap.Int("max_answers", maxAnswers),
		zap.Int("parallel_scan_threshold", opts.ParallelScanThreshold))

	return &Engine{
		kb:         kb,
		registry:   registry,
		advisor:    advisor,
		matcher:    NewMatcher(advisor, opts.ParallelScanThreshold, opts.ScanWorkers),
		observer:   opts.Observer,
		logger:     logger,
		maxAnswers: maxAnswers,
	}, nil
}

// KnowledgeBase returns the base the engine reads from.
func (e *Engine) KnowledgeBase() *knowledge.Base {
	return e.kb
}

// Registry returns the symptom registry the engine reads from.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Answer is Reason without the symptom and trace detail.
func (e *Engine) Answer(question string, metrics *types.SystemMetrics) []types.Answer {
	return e.Reason(Request{Question: question, Metrics: metrics}).Answers
}

// Reason answers one question.
func (e *Engine) Reason(req Request) Result {
	start := time.Now()
	q := NewQuery(req.Question)
	limit := e.limitFor(req)

	var trace *Trace
	if req.Metrics != nil && req.Metrics.DebugMode {
		trace = &Trace{Query: q.Normalized, HazardQuery: IsHazardQuery(q.Normalized)}
	}

	if q.Empty() {
		res := Result{Answers: []types.Answer{NeedMoreInfo()}, Trace: trace}
		e.finish(res, 0, 0, start)
		return res
	}

	if answer, ok := DetectEmergency(q.Normalized); ok {
		if trace != nil {
			trace.Emergency = true
		}
		res := Result{Answers: []types.Answer{answer}, Emergency: true, Trace: trace}
		e.finish(res, 0, 0, start)
		return res
	}

	symptoms := e.registry.Extract(q)

	entries := e.scope(req.Metrics)
	candidates := e.matcher.Match(q, entries, req.Metrics)
	accepted := FilterRelevant(q, candidates)

	fused := e.fuse(q, symptoms, accepted, req.Metrics)
	answers := Rank(fused, limit)

	if trace != nil {
		trace.fill(symptoms, len(entries), candidates, accepted, len(fused))
	}

	res := Result{Answers: answers, Symptoms: symptoms, Trace: trace}
	e.finish(res, len(candidates), len(accepted), start)
	return res
}

func (e *Engine) limitFor(req Request) int {
	if req.MaxAnswers > 0 {
		return req.MaxAnswers
	}
	if req.Metrics != nil {
		if n := req.Metrics.SearchDepth.MaxAnswers(); n > 0 {
			return n
		}
	}
	return e.maxAnswers
}

// scope applies the user-selected category as a soft filter.
func (e *Engine) scope(metrics *types.SystemMetrics) []knowledge.Entry {
	if metrics != nil && metrics.UserSelectedCategory != "" {
		if entries := e.kb.EntriesIn(metrics.UserSelectedCategory); len(entries) > 0 {
			return entries
		}
		e.logger.Debug("Selected category matched nothing, scanning full knowledge base",
			zap.String("category", metrics.UserSelectedCategory))
	}
	return e.kb.Entries()
}

// fuse merges accepted matches with symptom advice, metric alerts and
// preventive tips, then prunes for context.
func (e *Engine) fuse(q Query, symptoms Symptoms, accepted []MatchCandidate, metrics *types.SystemMetrics) []types.Answer {
	advice := symptomAdvice(e.registry, symptoms, q.Raw)

	var answers []types.Answer
	if len(accepted) > 0 {
		kb := make([]types.Answer, len(accepted))
		for i, c := range accepted {
			kb[i] = c.Answer()
		}
		answers = append(answers, kb...)
		for _, a := range advice {
			if shouldEnhance(kb, a) {
				answers = append(answers, a)
			}
		}
	} else {
		answers = append(answers, advice...)
	}

	answers = append(answers, relevantAlerts(metricAlerts(metrics), symptoms, len(answers) > 0)...)

	if p, ok := preventiveAnswer(e.advisor.Preventive(q.Raw), symptoms, answers); ok {
		answers = append(answers, p)
	}

	if weakResult(answers) {
		replacement := make([]types.Answer, 0, len(advice)+len(answers))
		for _, a := range advice {
			replacement = append(replacement, a.Clone())
		}
		answers = append(replacement, withoutType(answers, types.AnswerKBMatch)...)
	}

	return PruneForContext(answers, symptoms)
}

func (e *Engine) finish(res Result, candidates, accepted int, start time.Time) {
	elapsed := time.Since(start)
	active := res.Symptoms.Active()

	e.logger.Debug("Reasoning complete",
		zap.Int("answers", len(res.Answers)),
		zap.Bool("emergency", res.Emergency),
		zap.Strings("symptoms", active),
		zap.Int("candidates", candidates),
		zap.Int("accepted", accepted),
		zap.Duration("elapsed", elapsed))

	if e.observer == nil || len(res.Answers) == 0 {
		return
	}
	e.observer.Observe(Observation{
		Outcome:    res.Answers[0].Type,
		Symptoms:   active,
		Candidates: candidates,
		Accepted:   accepted,
		Duration:   elapsed,
	})
}
