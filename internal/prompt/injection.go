package prompt

import (
	"regexp"
	"sort"
)

// InjectionType represents a family of prompt injection attempts
type InjectionType string

const (
	InjectionTypeSystemPromptLeak    InjectionType = "system_prompt_leak"
	InjectionTypeRoleManipulation    InjectionType = "role_manipulation"
	InjectionTypeInstructionOverride InjectionType = "instruction_override"
	InjectionTypeDelimiterAttack     InjectionType = "delimiter_attack"
)

type injectionRule struct {
	kind       InjectionType
	confidence float64
	pattern    *regexp.Regexp
}

// Students write in Spanish; the English forms are common copy-pasted attacks.
var injectionRules = []injectionRule{
	{InjectionTypeSystemPromptLeak, 0.9, regexp.MustCompile(`(?i)(muestra|revela|dime|repite)(me)?\s+(tu|tus|el|las)\s+(prompt|instrucciones)(\s+(del\s+)?sistema)?`)},
	{InjectionTypeSystemPromptLeak, 0.9, regexp.MustCompile(`(?i)(show|reveal|print|repeat)\s+(me\s+)?(your|the)\s+(system|original|hidden)\s+(prompt|instructions?)`)},
	{InjectionTypeInstructionOverride, 0.9, regexp.MustCompile(`(?i)ignora\s+(todas\s+)?(las\s+)?(instrucciones|reglas)\s+(anteriores|previas)`)},
	{InjectionTypeInstructionOverride, 0.9, regexp.MustCompile(`(?i)(ignore|disregard)\s+(all\s+)?(previous|prior|above)\s+(instructions?|rules)`)},
	{InjectionTypeInstructionOverride, 0.8, regexp.MustCompile(`(?i)olvida\s+(todo|lo\s+anterior)`)},
	{InjectionTypeRoleManipulation, 0.7, regexp.MustCompile(`(?i)(ahora\s+eres|act[uú]a\s+como|finge\s+ser)\s+`)},
	{InjectionTypeRoleManipulation, 0.7, regexp.MustCompile(`(?i)(you\s+are\s+now|pretend\s+to\s+be|act\s+as\s+(an?|the))\s+`)},
	{InjectionTypeRoleManipulation, 0.8, regexp.MustCompile(`(?i)(soy|I\s+am)\s+(el\s+|the\s+)?(director|administrador|admin)\b.*\b(notas?|grades?|deudas?)`)},
	{InjectionTypeDelimiterAttack, 0.85, regexp.MustCompile(`(\[/?SYSTEM\]|<\|(system|assistant|user|end)\|>|###\s*(SYSTEM|SISTEMA|INSTRUCTION))`)},
}

// InjectionDetection represents a detected injection attempt
type InjectionDetection struct {
	Type       InjectionType
	Confidence float64
	StartPos   int
	EndPos     int
}

// DetectInjections returns every rule match ordered by position
func DetectInjections(s string) []InjectionDetection {
	var out []InjectionDetection
	for _, r := range injectionRules {
		for _, m := range r.pattern.FindAllStringIndex(s, -1) {
			out = append(out, InjectionDetection{Type: r.kind, Confidence: r.confidence, StartPos: m[0], EndPos: m[1]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartPos < out[j].StartPos })
	return out
}

// IsInjectionAttempt returns true if a high-confidence injection is detected
func IsInjectionAttempt(s string) bool {
	for _, d := range DetectInjections(s) {
		if d.Confidence >= 0.8 {
			return true
		}
	}
	return false
}

// InjectionKinds lists the distinct kinds found in s, in first-seen order
func InjectionKinds(s string) []string {
	var kinds []string
	seen := make(map[InjectionType]bool)
	for _, d := range DetectInjections(s) {
		if !seen[d.Type] {
			seen[d.Type] = true
			kinds = append(kinds, string(d.Type))
		}
	}
	return kinds
}
