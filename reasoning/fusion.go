package reasoning

import (
	"fmt"
	"strings"

	"techsupport-agent/types"
)

const (
	cpuTempLimit    = 92.0
	gpuTempLimit    = 88.0
	memoryLimit     = 92.0
	shortKBContent  = 150
	detailMargin    = 100
	enhanceKBLimit  = 3
	weakMatchScore  = 0.4
	preventiveIntro = "🛠️ Long-term prevention tips:"
)

var genericPhrases = []string{
	"most commonly caused by",
	"usually due to",
	"typically caused by",
	"this is often",
}

var distinctTopics = []string{"driver", "thermal", "temperature"}

var (
	thermalSymptoms = []string{"overheating", "random_shutdown", "high_cpu"}
	memorySymptoms  = []string{"slow", "high_cpu"}
)

// genericAdvice is the fallback diagnosis when no symptom produced advice.
func genericAdvice(question string) types.Answer {
	return types.Answer{
		Type:       types.AnswerExpertDiagnosis,
		Content:    fmt.Sprintf("Based on your description (%q), here are the most likely causes and fixes:", question),
		Category:   "General Diagnosis",
		Confidence: types.ConfidenceMedium,
		Priority:   types.PriorityMedium,
		RuleAdvice: []string{
			"Restart in Safe Mode to isolate software vs hardware",
			"Run Windows Memory Diagnostic",
			"Check Device Manager for yellow triangles",
			"Update all drivers from manufacturer site (not Windows Update)",
			"Run: sfc /scannow and DISM /Online /Cleanup-Image /RestoreHealth",
		},
		TroubleshootingSteps: []string{
			"1. Note exact error messages or behavior",
			"2. Try Safe Mode (hold Shift + Restart)",
			"3. Run hardware diagnostics if available",
			"4. Backup important data first",
		},
	}
}

// symptomAdvice returns template clones for detected symptoms, or the
// generic diagnosis when none apply.
func symptomAdvice(registry *Registry, symptoms Symptoms, question string) []types.Answer {
	advice := registry.Advice(symptoms)
	if len(advice) == 0 {
		advice = []types.Answer{genericAdvice(question)}
	}
	return advice
}

// shouldEnhance decides whether symptom advice adds value next to the
// accepted knowledge-base answers.
func shouldEnhance(kb []types.Answer, advice types.Answer) bool {
	if len(kb) >= enhanceKBLimit {
		return false
	}

	for _, m := range kb {
		content := strings.ToLower(m.Content)
		generic := len(m.Content) < shortKBContent
		for _, p := range genericPhrases {
			if strings.Contains(content, p) {
				generic = true
				break
			}
		}
		if generic && advice.Confidence == types.ConfidenceHigh {
			return true
		}
	}

	adviceContent := strings.ToLower(advice.Content)
	for _, m := range kb {
		content := strings.ToLower(m.Content)
		if len(advice.TroubleshootingSteps) > 0 && len(m.TroubleshootingSteps) == 0 {
			return true
		}
		if len(adviceContent) > len(content)+detailMargin {
			return true
		}
		if advice.Priority == types.PriorityCritical || advice.Priority == types.PriorityHigh {
			return true
		}
		for _, topic := range distinctTopics {
			if strings.Contains(adviceContent, topic) && !strings.Contains(content, topic) {
				return true
			}
		}
	}
	return false
}

type metricAlert struct {
	answer  types.Answer
	related []string
}

// metricAlerts builds threshold alerts. Zero readings never alert.
func metricAlerts(m *types.SystemMetrics) []metricAlert {
	if m == nil {
		return nil
	}
	var out []metricAlert
	if m.CPUTemp > cpuTempLimit {
		out = append(out, metricAlert{
			answer: types.Answer{
				Type:       types.AnswerMetricAlert,
				Content:    fmt.Sprintf("🔥 CRITICAL: CPU temperature %v°C - Risk of permanent damage!", m.CPUTemp),
				Category:   "Thermal Emergency",
				Confidence: types.ConfidenceHigh,
				Priority:   types.PriorityCritical,
			},
			related: thermalSymptoms,
		})
	}
	if m.GPUTemp > gpuTempLimit {
		out = append(out, metricAlert{
			answer: types.Answer{
				Type:       types.AnswerMetricAlert,
				Content:    fmt.Sprintf("🌡️ GPU Overheating: %v°C", m.GPUTemp),
				Category:   "Thermal",
				Confidence: types.ConfidenceHigh,
				Priority:   types.PriorityHigh,
			},
			related: thermalSymptoms,
		})
	}
	if m.MemoryUsage > memoryLimit {
		out = append(out, metricAlert{
			answer: types.Answer{
				Type:       types.AnswerMetricAlert,
				Content:    "💾 RAM nearly full → Close apps or upgrade",
				Category:   "Performance",
				Confidence: types.ConfidenceMedium,
				Priority:   types.PriorityHigh,
			},
			related: memorySymptoms,
		})
	}
	return out
}

// relevantAlerts keeps alerts tied to a detected symptom, or all of them
// when there is nothing else to show.
func relevantAlerts(alerts []metricAlert, symptoms Symptoms, haveAnswers bool) []types.Answer {
	var out []types.Answer
	for _, a := range alerts {
		if !haveAnswers || anyDetected(symptoms, a.related) {
			out = append(out, a.answer)
		}
	}
	return out
}

func anyDetected(symptoms Symptoms, names []string) bool {
	for _, n := range names {
		if symptoms.Has(n) {
			return true
		}
	}
	return false
}

// preventiveAnswer returns the maintenance answer when tips exist and tie to
// the current issue or no preventive answer is present yet.
func preventiveAnswer(tips []string, symptoms Symptoms, answers []types.Answer) (types.Answer, bool) {
	if len(tips) == 0 {
		return types.Answer{}, false
	}

	add := false
	switch {
	case symptoms.Has("overheating") && anyTipMentions(tips, "clean"):
		add = true
	case symptoms.Has("slow") && anyTipMentions(tips, "update", "clean"):
		add = true
	case !hasType(answers, types.AnswerPreventive):
		add = true
	}
	if !add {
		return types.Answer{}, false
	}

	return types.Answer{
		Type:       types.AnswerPreventive,
		Content:    preventiveIntro,
		Category:   "Maintenance",
		Confidence: types.ConfidenceMedium,
		Priority:   types.PriorityLow,
		RuleAdvice: append([]string(nil), tips...),
	}, true
}

func anyTipMentions(tips []string, words ...string) bool {
	for _, t := range tips {
		lt := strings.ToLower(t)
		for _, w := range words {
			if strings.Contains(lt, w) {
				return true
			}
		}
	}
	return false
}

func hasType(answers []types.Answer, t types.AnswerType) bool {
	for _, a := range answers {
		if a.Type == t {
			return true
		}
	}
	return false
}

// weakResult is true for an empty list or a lone low-scoring match.
func weakResult(answers []types.Answer) bool {
	if len(answers) == 0 {
		return true
	}
	return len(answers) == 1 && answers[0].Type == types.AnswerKBMatch && answers[0].Score() < weakMatchScore
}

func withoutType(answers []types.Answer, t types.AnswerType) []types.Answer {
	var out []types.Answer
	for _, a := range answers {
		if a.Type != t {
			out = append(out, a)
		}
	}
	return out
}

type symptomGroup int

const (
	groupNone symptomGroup = iota
	groupPower
	groupPerformance
	groupCrash
	groupDisplay
)

var symptomGroups = map[string]symptomGroup{
	"no_power":        groupPower,
	"random_shutdown": groupPower,
	"battery_issue":   groupPower,
	"slow":            groupPerformance,
	"high_cpu":        groupPerformance,
	"disk_full":       groupPerformance,
	"crashing":        groupCrash,
	"bsod":            groupCrash,
	"boot_loop":       groupCrash,
	"boot_failure":    groupCrash,
	"screen_issue":    groupDisplay,
}

var (
	peripheralTerms = []string{"peripheral", "keyboard", "mouse", "printer", "webcam"}
	audioTerms      = []string{"audio", "sound", "headphone", "speaker", "microphone"}
	liquidTerms     = []string{"spill", "liquid", "water"}
)

// topicText is what pruning classifies an answer by: its category and, for
// knowledge matches, the question it answered.
func topicText(a types.Answer) string {
	return strings.ToLower(a.Category + " " + a.SourceQuestion)
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func isPeripheral(a types.Answer) bool { return containsAny(topicText(a), peripheralTerms) }

func isAudio(a types.Answer) bool { return containsAny(topicText(a), audioTerms) }

func isLiquidSpill(a types.Answer) bool { return containsAny(topicText(a), liquidTerms) }

func mentionsCleaning(a types.Answer) bool {
	text := strings.ToLower(a.Content + " " + strings.Join(a.RuleAdvice, " "))
	return strings.Contains(text, "clean")
}

func isKeyboardCleaning(a types.Answer) bool {
	all := strings.ToLower(a.Category + " " + a.SourceQuestion + " " + a.Content)
	return strings.Contains(all, "keyboard") && strings.Contains(all, "clean")
}

// PruneForContext drops answers that do not fit the most salient detected
// symptom. Answers pass through unchanged when no grouped symptom is active.
func PruneForContext(answers []types.Answer, symptoms Symptoms) []types.Answer {
	group := symptomGroups[symptoms.Salient()]
	if group == groupNone {
		return answers
	}

	out := make([]types.Answer, 0, len(answers))
	for _, a := range answers {
		if dropForGroup(group, a) || isKeyboardCleaning(a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func dropForGroup(group symptomGroup, a types.Answer) bool {
	switch group {
	case groupPower:
		return isPeripheral(a) || isAudio(a) || a.Type == types.AnswerPreventive
	case groupPerformance, groupCrash:
		return (isPeripheral(a) && mentionsCleaning(a)) || isLiquidSpill(a)
	case groupDisplay:
		return isPeripheral(a) || isAudio(a)
	}
	return false
}
