package summary

import (
	"regexp"
	"slices"
	"strings"

	"github.com/Iron-Ham/crewview/internal/agent"
	"github.com/Iron-Ham/crewview/internal/detect"
)

// minSummaryLineLen is the shortest line the summarizer considers.
const minSummaryLineLen = 10

// noisePhrases mark startup chatter that never produces an entry.
var noisePhrases = []string{
	"Starting analysis",
	"System starting",
	"Initializing",
	"Analysis started",
	"Reading terminal output",
	"crew_execution_started",
}

// isNoise reports whether a line should be filtered before attribution.
func isNoise(line string) bool {
	if len(line) < minSummaryLineLen {
		return true
	}
	for _, p := range noisePhrases {
		if strings.Contains(line, p) {
			return true
		}
	}
	return false
}

// keyRule maps a display name to a summary key when it contains one of
// substrings or equals one of exact.
type keyRule struct {
	key        agent.Key
	substrings []string
	exact      []string
}

var keyRules = []keyRule{
	{agent.KeyForecasting, []string{"Demand Forecasting"}, []string{"Forecasting", "Demand Specialist"}},
	{agent.KeyAvailability, []string{"Availability Analyst"}, []string{"Availability"}},
	{agent.KeyAltSupplier, []string{"Alternative Supplier"}, []string{"Alt. Supplier", "Supplier Researcher"}},
	{agent.KeyPerformance, []string{"Performance Analyst", "Supplier Performance"}, []string{"Performance"}},
	{agent.KeyCommunication, []string{"Communication Specialist"}, []string{"Communication"}},
}

// ResolveKey maps an attributed display name to a summary key. Unlike state
// inference it never guesses from loose words: a name either contains a
// known agent phrase, equals a short form, or matches the alias table.
func ResolveKey(name string) (agent.Key, bool) {
	name = strings.TrimSpace(name)
	for _, r := range keyRules {
		for _, s := range r.substrings {
			if strings.Contains(name, s) {
				return r.key, true
			}
		}
		if slices.Contains(r.exact, name) {
			return r.key, true
		}
	}
	if canonical, ok := detect.ResolveAlias(name); ok {
		return agent.KeyOf(canonical)
	}
	return "", false
}

var nonAlnumRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)

// slug lowercases the first n runes of s with every non-alphanumeric
// replaced by '_'.
func slug(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return strings.ToLower(nonAlnumRegex.ReplaceAllString(string(r), "_"))
}

var responseMarkers = []string{"Response:", "Output:", "Result:", "Analysis:", "Found:"}

var firstPersonVerbs = []string{"analyzed", "found", "identified", "recommend"}

// hasResponse reports whether a line carries actual agent output.
func hasResponse(line string) bool {
	for _, m := range responseMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	if strings.Contains(line, "I ") {
		for _, v := range firstPersonVerbs {
			if strings.Contains(line, v) {
				return true
			}
		}
	}
	return false
}

var responseSnippets = []struct {
	re  *regexp.Regexp
	tag string
}{
	{regexp.MustCompile(`(?i)Response:\s*([^\n]{5,100})`), "response"},
	{regexp.MustCompile(`(?i)Output:\s*([^\n]{5,100})`), "output"},
	{regexp.MustCompile(`(?i)Result:\s*([^\n]{5,100})`), "result"},
	{regexp.MustCompile(`(?i)Analysis:\s*([^\n]{5,100})`), "analysis"},
	{regexp.MustCompile(`(?i)Found:\s*([^\n]{5,100})`), "found"},
	{regexp.MustCompile(`(?i)I found\s*([^\n.]{5,100})`), "found"},
	{regexp.MustCompile(`(?i)I identified\s*([^\n.]{5,100})`), "identified"},
	{regexp.MustCompile(`(?i)I analyzed\s*([^\n.]{5,100})`), "analyzed"},
	{regexp.MustCompile(`(?i)I recommend\s*([^\n.]{5,100})`), "recommend"},
}

// keywordGate ties a topic keyword to the agents allowed to talk about it.
// A line mentioning the keyword under any other agent is rejected.
type keywordGate struct {
	keywords      []string
	caseSensitive bool
	owners        []agent.Key
	fingerprint   string
}

var keywordGates = []keywordGate{
	{keywords: []string{"VQC4101-51 SMC 5/2", "SMC valve", "demand patterns"}, caseSensitive: true, owners: []agent.Key{agent.KeyForecasting}, fingerprint: "smc_valve_analysis"},
	{keywords: []string{"historical demand data"}, caseSensitive: true, owners: []agent.Key{agent.KeyForecasting}, fingerprint: "demand_data_review"},
	{keywords: []string{"inventory level"}, owners: []agent.Key{agent.KeyForecasting, agent.KeyAvailability}, fingerprint: "inventory_check"},
	{keywords: []string{"alternative supplier"}, owners: []agent.Key{agent.KeyAltSupplier}, fingerprint: "supplier_research"},
	{keywords: []string{"performance metrics", "supplier metrics"}, owners: []agent.Key{agent.KeyPerformance}, fingerprint: "performance_evaluation"},
	{keywords: []string{"email", "communicate"}, owners: []agent.Key{agent.KeyCommunication}, fingerprint: "communication"},
}

func (g keywordGate) matches(line, lower string) bool {
	for _, k := range g.keywords {
		if g.caseSensitive && strings.Contains(line, k) {
			return true
		}
		if !g.caseSensitive && strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Fingerprint tags a line with a semantic task type for de-duplication.
const (
	FingerprintCompletion = "completion"
	FingerprintWorking    = "working"
)

var firstSentenceRegex = regexp.MustCompile(`[^.!?]{10,100}[.!?]`)

// fingerprint derives the task type of a line for the given agent. ok is
// false when a topic keyword belongs to a different agent.
func fingerprint(line string, key agent.Key) (fp string, ok bool) {
	if hasResponse(line) {
		for _, s := range responseSnippets {
			if m := s.re.FindStringSubmatch(line); m != nil {
				return s.tag + "_" + slug(m[1], 20), true
			}
		}
	}

	lower := strings.ToLower(line)
	for _, g := range keywordGates {
		if !g.matches(line, lower) {
			continue
		}
		if !slices.Contains(g.owners, key) {
			return "", false
		}
		return g.fingerprint, true
	}

	switch {
	case detect.Normalize(line) == detect.LabelCompleted:
		return FingerprintCompletion, true
	case strings.Contains(line, "Task:") || strings.Contains(line, "Status: In Progress"):
		return FingerprintWorking, true
	}
	if s := firstSentenceRegex.FindString(line); s != "" {
		return "general_" + slug(strings.TrimSpace(s), 20), true
	}
	return "general_" + slug(line, 20), true
}

// isSpecialCase reports lines shown regardless of the soft count rule.
func isSpecialCase(line string, key agent.Key) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "email sent successfully") && key == agent.KeyCommunication:
		return true
	case strings.Contains(lower, "alternative suppliers identified") && key == agent.KeyAltSupplier:
		return true
	case strings.Contains(lower, "critical inventory") && (key == agent.KeyForecasting || key == agent.KeyAvailability):
		return true
	case strings.Contains(lower, "ranked supplier") && key == agent.KeyPerformance:
		return true
	}
	return hasResponse(line)
}
