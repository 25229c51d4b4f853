package dispatch

import "regexp"

var emergencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)gas\s*(smell|leak)`),
	regexp.MustCompile(`(?i)carbon\s*monoxide`),
	regexp.MustCompile(`(?i)co\s*alarm`),
	regexp.MustCompile(`(?i)water\s*(leak|pouring|flood)`),
	regexp.MustCompile(`(?i)no\s*(heat|cool)`),
	regexp.MustCompile(`(?i)infant|elderly|senior|baby`),
}

var priorityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)no\s*(heat|cool)`),
	regexp.MustCompile(`(?i)(heater|heating|furnace|boiler|heat pump|hvac).*?(not\s*working|broken|down|out|off|failed)`),
	regexp.MustCompile(`(?i)(cooler|cooling|ac|air\s*conditioner|central\s*air).*?(not\s*working|broken|down|out|off|failed)`),
	regexp.MustCompile(`(?i)water\s*(leak|pouring|flood)`),
	regexp.MustCompile(`(?i)burning\s*smell`),
	regexp.MustCompile(`(?i)strange\s*smell`),
	regexp.MustCompile(`(?i)sparks`),
	regexp.MustCompile(`(?i)electrical`),
	regexp.MustCompile(`(?i)(not\s*working|broken|down|out|off|failed)\s*(heater|heating|furnace|boiler|cooler|cooling|ac)`),
}

var uncertainPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)unsure`),
	regexp.MustCompile(`(?i)not\s*sure`),
	regexp.MustCompile(`(?i)don't\s*know`),
	regexp.MustCompile(`(?i)maybe`),
	regexp.MustCompile(`(?i)might\s*be`),
	regexp.MustCompile(`(?i)could\s*be`),
	regexp.MustCompile(`(?i)think\s*it\s*might`),
}

type TriageResult struct {
	Emergency bool `json:"emergency"`
	Priority  bool `json:"priority"`
}

// Triage classifies a caller's free-text description. An uncertain caller is
// never routed as priority, even when priority keywords match.
func Triage(text string) TriageResult {
	if text == "" {
		return TriageResult{}
	}
	res := TriageResult{
		Emergency: matchAny(emergencyPatterns, text),
		Priority:  matchAny(priorityPatterns, text),
	}
	if matchAny(uncertainPatterns, text) {
		res.Priority = false
	}
	return res
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
