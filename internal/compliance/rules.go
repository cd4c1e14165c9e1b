// Package compliance detects style/voice/content violations in generated
// drafts. Detection is an ordered list of independently testable rules;
// severity is data on the rule, not logic in the orchestrator, so the
// hard-fail versus warn-only policy can be read in one place.
package compliance

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Severity controls what a finding does to a generation attempt.
type Severity string

const (
	// SeverityHard blocks acceptance outright; repair is not trusted to fix it.
	SeverityHard Severity = "hard"
	// SeverityRepair triggers repair passes and blocks acceptance while present.
	SeverityRepair Severity = "repair"
	// SeverityWarn is tolerated at the acceptance gate with a logged warning.
	SeverityWarn Severity = "warn"
)

// Rule ids, one per issue family.
const (
	RuleSecondPerson    = "second_person"
	RuleForbiddenPhrase = "forbidden_phrase"
	RuleBannedDetour    = "banned_detour"
	RulePronounGrammar  = "pronoun_grammar"
	RuleAgeMismatch     = "age_mismatch"
	RuleControlTextLeak = "control_text_leak"
)

// Finding is one detected violation. Transient: findings exist only during
// validation and are never persisted.
type Finding struct {
	RuleID   string
	Severity Severity
	Match    string
}

// Rule is one independently testable check. Check returns the offending
// snippets, empty when the text complies.
type Rule struct {
	ID       string
	Severity Severity
	Check    func(text string) []string
}

var (
	secondPersonRe = regexp.MustCompile(`(?i)\b(you|your|yours|yourself|yourselves)\b`)

	// Pronoun-after-preposition errors the models keep producing
	// ("a gift for they both", "between he and the world").
	pronounGrammarRe = regexp.MustCompile(`(?i)\b(for|with|to|from|between|against|toward|towards|about|by|near)\s+(he|she|they)\b`)

	ageClaimRe = regexp.MustCompile(`(?i)\b(\d{1,3})\s+years\s+old\b`)
)

// forbiddenPhrases are template constructions that mark machine voice. Each
// carries its own sub-id so repairs can be asserted per phrase.
var forbiddenPhrases = []struct {
	id     string
	phrase string
}{
	{"journey_of_self_discovery", "journey of self-discovery"},
	{"tapestry", "tapestry of"},
	{"delve", "delve into"},
	{"testament_to", "a testament to"},
	{"important_to_note", "it is important to note"},
	{"in_conclusion", "in conclusion"},
	{"at_the_end_of_the_day", "at the end of the day"},
	{"embark", "embark on"},
	{"navigate_the_complexities", "navigate the complexities"},
	{"unlock_potential", "unlock their potential"},
}

// bannedDetours are whole topics the reading must never wander into.
var bannedDetours = []string{
	"for entertainment purposes",
	"consult a professional",
	"astrology is not deterministic",
	"science does not support",
	"this is not medical advice",
	"seek therapy",
}

// controlTextMarkers are internal prompt scaffolding strings that must never
// leak into output.
var controlTextMarkers = []string{
	"=== ",
	"FINAL INSTRUCTION",
	"OUTPUT LENGTH CONTRACT",
	"PREFERENCE LENS",
	"MODE RULES",
	"SYSTEM ANALYSIS:",
	"SUBJECTS:",
	"TRUNCATED FOR TOKEN SAFETY",
	"CHART DATA",
	".md",
}

// DefaultRules returns the ordered rule list. Order matters only for
// reporting stability; every rule always runs.
func DefaultRules() []Rule {
	return []Rule{
		{ID: RulePronounGrammar, Severity: SeverityHard, Check: checkPronounGrammar},
		{ID: RuleControlTextLeak, Severity: SeverityHard, Check: checkControlTextLeak},
		{ID: RuleForbiddenPhrase, Severity: SeverityRepair, Check: checkForbiddenPhrases},
		{ID: RuleBannedDetour, Severity: SeverityRepair, Check: checkBannedDetours},
		{ID: RuleSecondPerson, Severity: SeverityWarn, Check: checkSecondPerson},
	}
}

// RulesWithAge appends an age-mismatch rule when the subject's age is known
// from birth data. expectedAge is the subject's age in whole years.
func RulesWithAge(rules []Rule, expectedAge int) []Rule {
	return append(rules, Rule{
		ID:       RuleAgeMismatch,
		Severity: SeverityRepair,
		Check: func(text string) []string {
			var matches []string
			for _, m := range ageClaimRe.FindAllStringSubmatch(text, -1) {
				claimed, err := strconv.Atoi(m[1])
				if err != nil {
					continue
				}
				// One year of slack covers birthdays near the generation date.
				if claimed < expectedAge-1 || claimed > expectedAge+1 {
					matches = append(matches, m[0])
				}
			}
			return matches
		},
	})
}

// Detect runs every rule against the text and collects findings in rule
// order.
func Detect(text string, rules []Rule) []Finding {
	var findings []Finding
	for _, rule := range rules {
		for _, match := range rule.Check(text) {
			findings = append(findings, Finding{RuleID: rule.ID, Severity: rule.Severity, Match: match})
		}
	}
	return findings
}

// Blocking returns the findings that prevent acceptance: everything except
// warn-severity ones.
func Blocking(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity != SeverityWarn {
			out = append(out, f)
		}
	}
	return out
}

// Repairable returns the findings a repair pass is expected to fix.
func Repairable(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == SeverityRepair {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns the warn-only findings, formatted for logging.
func Warnings(findings []Finding) []string {
	var out []string
	for _, f := range findings {
		if f.Severity == SeverityWarn {
			out = append(out, fmt.Sprintf("%s: %q", f.RuleID, f.Match))
		}
	}
	return out
}

// Describe renders findings for embedding into a repair prompt.
func Describe(findings []Finding) string {
	var b strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&b, "- %s: %q\n", f.RuleID, f.Match)
	}
	return b.String()
}

func checkSecondPerson(text string) []string {
	return dedupe(secondPersonRe.FindAllString(text, -1))
}

func checkPronounGrammar(text string) []string {
	return dedupe(pronounGrammarRe.FindAllString(text, -1))
}

func checkForbiddenPhrases(text string) []string {
	lower := strings.ToLower(text)
	var matches []string
	for _, fp := range forbiddenPhrases {
		if strings.Contains(lower, fp.phrase) {
			matches = append(matches, fp.id)
		}
	}
	return matches
}

func checkBannedDetours(text string) []string {
	lower := strings.ToLower(text)
	var matches []string
	for _, detour := range bannedDetours {
		if strings.Contains(lower, detour) {
			matches = append(matches, detour)
		}
	}
	return matches
}

func checkControlTextLeak(text string) []string {
	var matches []string
	for _, marker := range controlTextMarkers {
		if strings.Contains(text, marker) {
			matches = append(matches, marker)
		}
	}
	return matches
}

func dedupe(matches []string) []string {
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		key := strings.ToLower(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}
