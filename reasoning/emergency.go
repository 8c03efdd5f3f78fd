package reasoning

import (
	"regexp"

	"techsupport-agent/types"
)

var emergencyPatterns = compileAll(
	`\bsmoke\b`,
	`\bfire\b`,
	`\bspark\b`,
	`\bburning smell\b`,
	`\bspilled water\b`,
	`\bliquid\b`,
	`\bwet laptop\b`,
	`\bdropped in water\b`,
	`\belectrical fire\b`,
	`\bsmoking\b`,
	`\bflame\b`,
	`\bburned\b`,
	`\belectrical hazard\b`,
)

const emergencyContent = "🚨 CRITICAL SAFETY EMERGENCY - IMMEDIATE ACTION REQUIRED! 🚨\n\n" +
	"• UNPLUG FROM POWER IMMEDIATELY\n" +
	"• DO NOT TOUCH if smoking or sparking\n" +
	"• NO WATER on electrical fires\n" +
	"• If liquid spilled: power off → remove battery → dry 72+ hours\n" +
	"• Contact professional technician before reuse"

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// DetectEmergency returns the safety answer when the query contains hazard
// language on word boundaries. "fired" does not match "fire".
func DetectEmergency(normalized string) (types.Answer, bool) {
	for _, re := range emergencyPatterns {
		if re.MatchString(normalized) {
			return emergencyAnswer(), true
		}
	}
	return types.Answer{}, false
}

func emergencyAnswer() types.Answer {
	return types.Answer{
		Type:       types.AnswerEmergency,
		Content:    emergencyContent,
		Category:   "Safety Emergency",
		Confidence: types.ConfidencePerfect,
		Priority:   types.PriorityCritical,
		RuleAdvice: []string{
			"UNPLUG POWER CORD NOW",
			"Move away from flammable materials",
			"Call emergency services if fire develops",
			"Do not attempt to use until professionally inspected",
		},
		TroubleshootingSteps: []string{
			"1. SAFETY FIRST - Unplug immediately",
			"2. Evacuate area if heavy smoke",
			"3. Contact professional repair service",
			"4. Do not attempt DIY repair on electrical hazards",
		},
	}
}
