package detect

import (
	"strings"

	"github.com/Iron-Ham/crewview/internal/agent"
)

// aliases maps lowercase alternate spellings to canonical agent names.
var aliases = map[string]string{
	"demand forecasting specialist":   agent.NameForecasting,
	"demand specialist":               agent.NameForecasting,
	"forecasting specialist":          agent.NameForecasting,
	"availability analyst":            agent.NameAvailability,
	"alternative supplier researcher": agent.NameResearcher,
	"supplier researcher":             agent.NameResearcher,
	"supplier performance analyst":    agent.NamePerformance,
	"performance analyst":             agent.NamePerformance,
	"communication specialist":        agent.NameCommunication,
}

// roleKeywords is evaluated in order; the first keyword found wins.
var roleKeywords = []struct {
	keyword string
	name    string
}{
	{"demand", agent.NameForecasting},
	{"forecast", agent.NameForecasting},
	{"availability", agent.NameAvailability},
	{"alternative", agent.NameResearcher},
	{"researcher", agent.NameResearcher},
	{"performance", agent.NamePerformance},
	{"communication", agent.NameCommunication},
}

// minSignificantWordLen is the length a name word must exceed to count
// toward word-overlap matching.
const minSignificantWordLen = 4

// ResolveDirect returns the first canonical name contained in text.
func ResolveDirect(text string) (string, bool) {
	for _, name := range agent.Names() {
		if strings.Contains(text, name) {
			return name, true
		}
	}
	return "", false
}

// ResolveAlias resolves text by case-insensitive equality or the alias table.
// It never guesses from partial words.
func ResolveAlias(text string) (string, bool) {
	norm := strings.ToLower(strings.TrimSpace(text))
	if norm == "" {
		return "", false
	}
	for _, name := range agent.Names() {
		if strings.ToLower(name) == norm {
			return name, true
		}
	}
	if name, ok := aliases[norm]; ok {
		return name, true
	}
	return "", false
}

// Resolve maps an extracted agent reference to a canonical agent name.
// Resolution order: direct substring, case-insensitive equality, alias
// table, significant-word overlap, role keywords.
func Resolve(text string) (string, bool) {
	if name, ok := ResolveDirect(text); ok {
		return name, true
	}
	if name, ok := ResolveAlias(text); ok {
		return name, true
	}

	norm := strings.ToLower(strings.TrimSpace(text))
	if norm == "" {
		return "", false
	}
	for _, name := range agent.Names() {
		for _, word := range strings.Fields(strings.ToLower(name)) {
			if len(word) > minSignificantWordLen && strings.Contains(norm, word) {
				return name, true
			}
		}
	}
	for _, rk := range roleKeywords {
		if strings.Contains(norm, rk.keyword) {
			return rk.name, true
		}
	}
	return "", false
}
