package reasoning

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"techsupport-agent/knowledge"
	"techsupport-agent/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	kb, err := knowledge.LoadFile(filepath.Join("testdata", "facts.json"), zap.NewNop())
	require.NoError(t, err)
	engine, err := NewEngine(kb, nil, knowledge.Rules{}, zap.NewNop(), opts)
	require.NoError(t, err)
	return engine
}

func findAnswer(answers []types.Answer, match func(types.Answer) bool) (types.Answer, bool) {
	for _, a := range answers {
		if match(a) {
			return a, true
		}
	}
	return types.Answer{}, false
}

func TestReasonEmergencyShortCircuits(t *testing.T) {
	engine := newTestEngine(t, Options{})

	res := engine.Reason(Request{Question: "There's smoke coming from my PC"})
	require.Len(t, res.Answers, 1)
	assert.True(t, res.Emergency)
	assert.Nil(t, res.Symptoms)

	a := res.Answers[0]
	assert.Equal(t, types.AnswerEmergency, a.Type)
	assert.Equal(t, types.PriorityCritical, a.Priority)
	assert.Equal(t, types.ConfidencePerfect, a.Confidence)
	assert.True(t, strings.HasPrefix(a.Content, "🚨 CRITICAL SAFETY EMERGENCY"))
}

func TestReasonNoPower(t *testing.T) {
	engine := newTestEngine(t, Options{})

	res := engine.Reason(Request{Question: "my laptop wont turn on, completely dead"})
	assert.Equal(t, []string{"no_power"}, res.Symptoms.Active())

	diag, ok := findAnswer(res.Answers, func(a types.Answer) bool { return a.Category == "Power Failure" })
	require.True(t, ok, "no-power diagnosis present")
	assert.Equal(t, types.AnswerExpertDiagnosis, diag.Type)
	assert.Equal(t, types.PriorityHigh, diag.Priority)
	assert.Len(t, diag.TroubleshootingSteps, 5)
	assert.Equal(t, res.Answers[0], diag, "HIGH priority diagnosis ranks first")

	for _, a := range res.Answers {
		assert.NotEqual(t, "Peripheral", a.Category)
		assert.NotEqual(t, "Audio", a.Category)
		assert.NotEqual(t, types.AnswerPreventive, a.Type)
	}

	kb, ok := findAnswer(res.Answers, func(a types.Answer) bool { return a.Type == types.AnswerKBMatch })
	require.True(t, ok)
	assert.Equal(t, "Laptop won't turn on at all", kb.SourceQuestion)
	assert.InDelta(t, 0.7, kb.Relevance(), 1e-9, "power phrasing boosts relevance")
}

func TestReasonHeadphones(t *testing.T) {
	engine := newTestEngine(t, Options{})

	quoted := engine.Answer(`"How to fix no sound in headphones?" still not working`, nil)
	kb, ok := findAnswer(quoted, func(a types.Answer) bool { return a.Type == types.AnswerKBMatch })
	require.True(t, ok)
	assert.Equal(t, types.ConfidencePerfect, kb.Confidence)
	assert.True(t, strings.HasPrefix(kb.Content, "📚 Direct answer:\n"))
	assert.Equal(t, "Audio", kb.Category)

	plain := engine.Answer("headphones not working", nil)
	require.NotEmpty(t, plain)
	assert.Equal(t, "Audio", plain[0].Category)
}

func TestReasonSuppressesHazardContentForNormalQuery(t *testing.T) {
	engine := newTestEngine(t, Options{})

	answers := engine.Answer("computer is slow", nil)
	require.NotEmpty(t, answers)

	for _, a := range answers {
		assert.NotEqual(t, "Laptop slow after water spill?", a.SourceQuestion)
		assert.NotContains(t, strings.ToLower(a.Content), "dry thoroughly")
	}

	kb, ok := findAnswer(answers, func(a types.Answer) bool { return a.Type == types.AnswerKBMatch })
	require.True(t, ok)
	assert.Equal(t, "Why is my computer slow?", kb.SourceQuestion)
	_, ok = findAnswer(answers, func(a types.Answer) bool { return a.Type == types.AnswerPreventive })
	assert.True(t, ok, "slowness ties preventive tips")
}

func TestReasonKeepsFirewallEntryForFirewallQuery(t *testing.T) {
	kb := knowledge.NewBase([]knowledge.Category{
		{Label: "Security", Entries: []knowledge.Entry{{Question: "Why is the firewall blocking my game?", Answer: "Allow the game through Windows Defender Firewall."}}},
		{Label: "Browser", Entries: []knowledge.Entry{{Question: "Chrome keeps crashing", Answer: "Disable extensions and clear the browser cache."}}},
	})
	engine, err := NewEngine(kb, nil, knowledge.Rules{}, zap.NewNop(), Options{})
	require.NoError(t, err)

	res := engine.Reason(Request{
		Question: "firewall keeps blocking chrome",
		Metrics:  &types.SystemMetrics{DebugMode: true},
	})
	require.NotNil(t, res.Trace)
	assert.False(t, res.Trace.HazardQuery)
	assert.Contains(t, res.Trace.Accepted, "Why is the firewall blocking my game?")

	kbAnswer, ok := findAnswer(res.Answers, func(a types.Answer) bool {
		return a.Type == types.AnswerKBMatch && a.SourceQuestion == "Why is the firewall blocking my game?"
	})
	require.True(t, ok)
	assert.NotEqual(t, types.PriorityCritical, kbAnswer.Priority)
}

func TestReasonMetricAlerts(t *testing.T) {
	engine := newTestEngine(t, Options{})

	answers := engine.Answer("my pc is overheating", &types.SystemMetrics{CPUTemp: 95})
	require.NotEmpty(t, answers)
	assert.Equal(t, types.AnswerMetricAlert, answers[0].Type)
	assert.Equal(t, types.PriorityCritical, answers[0].Priority)
	assert.Contains(t, answers[0].Content, "95°C")
}

func TestReasonEmptyQuestion(t *testing.T) {
	engine := newTestEngine(t, Options{})

	answers := engine.Answer("   ", nil)
	require.Len(t, answers, 1)
	assert.Equal(t, types.AnswerNeedMoreInfo, answers[0].Type)
}

func TestReasonUnknownQuestionGetsGenericAdvice(t *testing.T) {
	engine := newTestEngine(t, Options{})

	answers := engine.Answer("strange beeping", nil)
	require.Len(t, answers, 1)
	assert.Equal(t, "General Diagnosis", answers[0].Category)
}

func TestReasonSelectedCategory(t *testing.T) {
	engine := newTestEngine(t, Options{})

	scoped := engine.Answer("computer is slow", &types.SystemMetrics{UserSelectedCategory: "network"})
	_, ok := findAnswer(scoped, func(a types.Answer) bool { return a.Type == types.AnswerKBMatch })
	assert.False(t, ok, "only networking entries are scanned")

	unknown := engine.Answer("computer is slow", &types.SystemMetrics{UserSelectedCategory: "printing"})
	_, ok = findAnswer(unknown, func(a types.Answer) bool { return a.Type == types.AnswerKBMatch })
	assert.True(t, ok, "unmatched category falls back to the full base")
}

func TestReasonAnswerCaps(t *testing.T) {
	engine := newTestEngine(t, Options{})
	question := "pc is slow and crashing with blue screen, screen flickering, wifi not working, clicking noise"

	assert.Len(t, engine.Answer(question, nil), DefaultMaxAnswers)
	assert.Len(t, engine.Answer(question, &types.SystemMetrics{SearchDepth: types.SearchBasic}), 3)
	assert.Len(t, engine.Answer(question, &types.SystemMetrics{SearchDepth: types.SearchComprehensive}), 6)
	assert.Len(t, engine.Reason(Request{Question: question, MaxAnswers: 2}).Answers, 2)

	capped := newTestEngine(t, Options{MaxAnswers: 5})
	assert.Len(t, capped.Answer(question, nil), 5)
}

func TestReasonProperties(t *testing.T) {
	engine := newTestEngine(t, Options{})
	questions := []string{
		"my laptop wont turn on, completely dead",
		"computer is slow",
		"headphones not working",
		"pc is slow and crashing with blue screen, screen flickering, wifi not working, clicking noise",
		"keyboard not working after update",
		"battery not charging and laptop is hot",
		"How do I clean my keyboard?",
		"wifi keeps disconnecting",
		"",
	}

	for _, q := range questions {
		t.Run(q, func(t *testing.T) {
			metrics := &types.SystemMetrics{CPUTemp: 96, MemoryUsage: 95}
			first := engine.Answer(q, metrics)
			second := engine.Answer(q, metrics)
			assert.Equal(t, first, second, "idempotent")

			require.NotEmpty(t, first)
			assert.LessOrEqual(t, len(first), DefaultMaxAnswers)

			seen := make(map[string]bool)
			for i, a := range first {
				assert.True(t, a.Type.Valid())
				assert.NotZero(t, a.Priority.Rank())

				key := dedupKey(a)
				assert.False(t, seen[key], "duplicate answer %d", i)
				seen[key] = true

				if i == 0 {
					continue
				}
				prev := first[i-1]
				switch {
				case prev.Priority.Rank() != a.Priority.Rank():
					assert.Greater(t, prev.Priority.Rank(), a.Priority.Rank())
				case prev.Relevance() != a.Relevance():
					assert.Greater(t, prev.Relevance(), a.Relevance())
				case prev.Confidence.Rank() != a.Confidence.Rank():
					assert.Greater(t, prev.Confidence.Rank(), a.Confidence.Rank())
				default:
					assert.GreaterOrEqual(t, prev.Score(), a.Score())
				}
			}
		})
	}
}

func TestReasonParallelScanMatchesSequential(t *testing.T) {
	sequential := newTestEngine(t, Options{})
	parallel := newTestEngine(t, Options{ParallelScanThreshold: 1, ScanWorkers: 4})

	for _, q := range []string{"computer is slow", "headphones not working", "wifi keeps disconnecting"} {
		assert.Equal(t, sequential.Answer(q, nil), parallel.Answer(q, nil), q)
	}
}

func TestReasonConcurrentUse(t *testing.T) {
	engine := newTestEngine(t, Options{})
	want := engine.Answer("computer is slow", nil)

	var wg sync.WaitGroup
	results := make([][]types.Answer, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = engine.Answer("computer is slow", nil)
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

type recordingObserver struct {
	mu  sync.Mutex
	obs []Observation
}

func (r *recordingObserver) Observe(o Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, o)
}

func TestReasonObserverAndTrace(t *testing.T) {
	observer := &recordingObserver{}
	engine := newTestEngine(t, Options{Observer: observer})

	res := engine.Reason(Request{
		Question: "computer is slow",
		Metrics:  &types.SystemMetrics{DebugMode: true},
	})
	require.NotNil(t, res.Trace)
	assert.Equal(t, []string{"slow"}, res.Trace.ActiveSymptoms)
	assert.Equal(t, "slow", res.Trace.SalientSymptom)
	assert.Equal(t, 6, res.Trace.Scanned)
	assert.Equal(t, []string{"Why is my computer slow?"}, res.Trace.Accepted)
	assert.LessOrEqual(t, len(res.Trace.Candidates), 3)
	assert.False(t, res.Trace.HazardQuery)

	engine.Reason(Request{Question: "fire in the case"})

	require.Len(t, observer.obs, 2)
	assert.Equal(t, []string{"slow"}, observer.obs[0].Symptoms)
	assert.Equal(t, types.AnswerEmergency, observer.obs[1].Outcome)

	assert.Nil(t, engine.Reason(Request{Question: "computer is slow"}).Trace)
}
