package knowledge

import (
	"regexp"
	"strings"

	"techsupport-agent/types"
)

const (
	maxRuleAdvice        = 8
	maxTroubleshootSteps = 6
)

// RuleResult is what the rules derive from a single knowledge entry.
type RuleResult struct {
	Priority types.Priority
	Advice   []string
	Steps    []string
}

// hazardWords is matched on word boundaries so "firewall" and "Firefox" do
// not read as fire.
var hazardWords = regexp.MustCompile(`\b(fire|smok(e|ing)|sparks?|sparked|sparking|burn(s|ing|ed|t)?|water|spill(s|ed|ing)?|electrical|hazard)\b`)

// keywordRule contributes its advice when any trigger is a substring of the
// entry question, or when words matches it.
type keywordRule struct {
	triggers []string
	words    *regexp.Regexp
	advice   []string
}

func (r keywordRule) matches(text string) bool {
	if r.words != nil && r.words.MatchString(text) {
		return true
	}
	for _, t := range r.triggers {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

var hardwareRules = []keywordRule{
	{
		triggers: []string{"overheat", "overheating", "temperature", "hot", "thermal", "cooling", "warm"},
		advice: []string{
			"🔴 Check CPU/GPU temperatures using monitoring software like HWMonitor",
			"🧹 Clean dust from fans, heatsinks, and vents regularly",
			"💨 Ensure proper case airflow and ventilation",
			"🔧 Consider reapplying thermal paste if temperatures remain high",
		},
	},
	{
		triggers: []string{"fan", "noisy", "noise", "loud", "whirring", "grinding", "buzzing"},
		advice: []string{
			"🎯 Identify which fan is making noise (CPU, GPU, case, PSU)",
			"🧼 Clean the noisy fan and check for obstructions",
			"⚙️ Check fan speed settings in BIOS/UEFI",
		},
	},
	{
		triggers: []string{"slow", "performance", "lag", "bottleneck", "sluggish", "speed"},
		advice: []string{
			"📊 Monitor resource usage in Task Manager (CPU, RAM, disk, GPU)",
			"🔄 Update drivers, especially graphics and chipset",
			"💾 Consider SSD upgrade for significant speed improvement",
		},
	},
	{
		triggers: []string{"power", "shutdown", "restart", "boot", "turn on", "won't start"},
		advice: []string{
			"🔌 Check all power connections and cables",
			"⚡ Test with different power outlet and cable",
			"🔋 Verify power supply unit (PSU) health and capacity",
		},
	},
	{
		triggers: []string{"ram", "memory", "bsod", "blue screen", "bluescreen", "crash"},
		advice: []string{
			"🧪 Run Windows Memory Diagnostic or MemTest86",
			"🔧 Reseat RAM modules in their slots",
			"⚡ Check RAM compatibility and running at correct speeds",
		},
	},
	{
		triggers: []string{"screen", "display", "monitor", "lines", "distorted", "flickering"},
		advice: []string{
			"🖥️ Check video cable connections and try different cables",
			"🔄 Update graphics drivers to latest version",
			"⚙️ Test with different monitor or input source",
		},
	},
	{
		words: hazardWords,
		advice: []string{
			"🚨 IMMEDIATELY shut down and unplug computer",
			"🔥 Do not attempt to use until professionally inspected",
			"💧 For liquid spills: remove battery if possible, dry thoroughly",
		},
	},
}

var softwareRules = []keywordRule{
	{
		triggers: []string{"install", "setup", "compatibility", "won't install", "installation"},
		advice: []string{
			"🛡️ Run installer as Administrator",
			"🔒 Temporarily disable antivirus during installation",
			"📋 Check system requirements and compatibility",
		},
	},
	{
		triggers: []string{"crash", "freeze", "not responding", "hang", "stopped working"},
		advice: []string{
			"📱 Update software to latest version",
			"🔧 Check for and install available Windows updates",
			"🔄 Run system file checker: sfc /scannow",
		},
	},
	{
		triggers: []string{"virus", "malware", "infected", "ransomware", "trojan", "hacked"},
		advice: []string{
			"🚫 Disconnect from internet immediately",
			"🛡️ Run full scan with updated antivirus",
			"🔒 Boot in Safe Mode for thorough cleaning",
		},
	},
	{
		triggers: []string{"update", "upgrade", "windows update", "failed update"},
		advice: []string{
			"🔄 Run Windows Update Troubleshooter",
			"🧹 Clear update cache and restart update service",
			"📥 Manually download updates from Microsoft Catalog",
		},
	},
}

var networkRules = []keywordRule{
	{
		triggers: []string{"wifi", "wireless", "connection", "disconnect", "router"},
		advice: []string{
			"📶 Restart router and modem",
			"🔧 Update network adapter drivers",
			"🎛️ Change WiFi channel to reduce interference",
		},
	},
	{
		triggers: []string{"slow internet", "bandwidth", "download speed", "streaming", "speed"},
		advice: []string{
			"📊 Run speed test at different times of day",
			"🔍 Check for background downloads or updates",
			"🔄 Restart networking equipment",
		},
	},
	{
		triggers: []string{"no internet", "can't connect", "dns", "proxy", "offline"},
		advice: []string{
			"🌐 Flush DNS cache: ipconfig /flushdns",
			"🔌 Reset network settings to default",
			"📋 Renew IP address: ipconfig /renew",
		},
	},
}

var storageRules = []keywordRule{
	{
		triggers: []string{"disk full", "storage", "space", "cleanup", "low space"},
		advice: []string{
			"🧹 Run Disk Cleanup utility",
			"📁 Move large files to external storage or cloud",
			"🗑️ Uninstall unused programs and games",
		},
	},
	{
		triggers: []string{"hard drive", "hdd", "ssd", "clicking", "noise", "failing"},
		advice: []string{
			"💾 Backup important data immediately",
			"🔍 Run CHKDSK to check for disk errors",
			"📊 Monitor drive health with SMART tools",
		},
	},
	{
		triggers: []string{"recover", "deleted", "formatted", "lost data", "files gone"},
		advice: []string{
			"🚫 Stop using the drive immediately",
			"🔧 Use data recovery software promptly",
			"💾 Restore from backup if available",
		},
	},
}

var gamingRules = []keywordRule{
	{
		triggers: []string{"fps", "frame rate", "lag", "stutter", "gaming performance"},
		advice: []string{
			"🎮 Update graphics drivers to latest version",
			"⚙️ Lower in-game graphics settings",
			"🔧 Close background applications while gaming",
		},
	},
	{
		triggers: []string{"game crash", "won't launch", "directx", "opengl", "not starting"},
		advice: []string{
			"🔄 Verify game file integrity through platform (Steam/Epic)",
			"📋 Install latest DirectX and Visual C++ redistributables",
			"🛡️ Add game to antivirus exceptions list",
		},
	},
}

// ruleGroups are evaluated in this order; earlier groups win ties in dedup.
var ruleGroups = [][]keywordRule{hardwareRules, softwareRules, networkRules, storageRules, gamingRules}

type priorityRule struct {
	priority types.Priority
	rule     keywordRule
}

var priorityRules = []priorityRule{
	{types.PriorityCritical, keywordRule{words: hazardWords}},
	{types.PriorityHigh, keywordRule{triggers: []string{"data loss", "backup", "recovery", "ransomware", "virus", "hacked", "compromised", "won't boot"}}},
	{types.PriorityMedium, keywordRule{triggers: []string{"blue screen", "crash", "freeze", "not working", "error"}}},
	{types.PriorityLow, keywordRule{triggers: []string{"slow", "performance", "optimization", "cleanup", "maintenance"}}},
}

var generalSteps = []string{
	"1. 🔄 Restart the computer and test again",
	"2. 📋 Check for recent changes or updates",
	"3. 🔍 Look for specific error messages or codes",
}

var stepRules = []keywordRule{
	{
		triggers: []string{"hardware", "component", "device", "peripheral", "usb", "display"},
		advice: []string{
			"4. 🔌 Check all physical connections",
			"5. 🧹 Clean components and ensure proper ventilation",
			"6. 🔧 Update device drivers and firmware",
		},
	},
	{
		triggers: []string{"software", "program", "application", "game", "install", "crash"},
		advice: []string{
			"4. 🛡️ Run as Administrator",
			"5. 🔒 Check antivirus and firewall settings",
			"6. 📥 Reinstall or repair the application",
		},
	},
	{
		triggers: []string{"network", "wifi", "internet", "router", "connection"},
		advice: []string{
			"4. 🌐 Restart router and modem",
			"5. 🔧 Update network adapter drivers",
			"6. 📶 Test with Ethernet cable if possible",
		},
	},
}

var preventiveRules = []keywordRule{
	{
		triggers: []string{"overheat", "fan", "noise", "dust", "clean"},
		advice: []string{
			"• Clean dust every 3-6 months",
			"• Monitor temperatures regularly",
			"• Ensure proper ventilation",
		},
	},
	{
		triggers: []string{"slow", "crash", "update", "virus"},
		advice: []string{
			"• Keep system and drivers updated",
			"• Run regular antivirus scans",
			"• Clean temporary files weekly",
		},
	},
	{
		triggers: []string{"backup", "recovery", "lost", "deleted"},
		advice: []string{
			"• Maintain regular backups",
			"• Use cloud storage for important files",
			"• Test backup restoration periodically",
		},
	},
}

// Rules is the keyword-driven advice provider. It has no state; the zero
// value is ready to use.
type Rules struct{}

// Evaluate derives priority, advice and troubleshooting steps from the
// entry question. Metrics are accepted for interface parity and currently
// do not change the result.
func (Rules) Evaluate(entry Entry, metrics *types.SystemMetrics) RuleResult {
	question := strings.ToLower(entry.Question)
	return RuleResult{
		Priority: PriorityFor(question),
		Advice:   adviceFor(question),
		Steps:    stepsFor(question),
	}
}

// Preventive returns long-term maintenance tips for a free-text question.
func (Rules) Preventive(question string) []string {
	q := strings.ToLower(question)
	var out []string
	for _, r := range preventiveRules {
		if r.matches(q) {
			out = append(out, r.advice...)
		}
	}
	return out
}

// PriorityFor classifies lower-cased text into a priority tier.
func PriorityFor(text string) types.Priority {
	for _, r := range priorityRules {
		if r.rule.matches(text) {
			return r.priority
		}
	}
	return types.PriorityNormal
}

func adviceFor(question string) []string {
	var all []string
	for _, group := range ruleGroups {
		for _, r := range group {
			if r.matches(question) {
				all = append(all, r.advice...)
			}
		}
	}

	seen := make(map[string]bool, len(all))
	unique := make([]string, 0, len(all))
	for _, item := range all {
		core := stripIcon(item)
		if seen[core] {
			continue
		}
		seen[core] = true
		unique = append(unique, item)
		if len(unique) == maxRuleAdvice {
			break
		}
	}
	return unique
}

func stepsFor(question string) []string {
	steps := append([]string(nil), generalSteps...)
	for _, r := range stepRules {
		if r.matches(question) {
			steps = append(steps, r.advice...)
		}
	}
	if len(steps) > maxTroubleshootSteps {
		steps = steps[:maxTroubleshootSteps]
	}
	return steps
}

// stripIcon drops the leading emoji token so "🔄 Update X" and "🎮 Update X"
// compare equal.
func stripIcon(item string) string {
	fields := strings.Fields(item)
	if len(fields) == 0 {
		return item
	}
	return strings.Join(fields[1:], " ")
}
