package summary

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Iron-Ham/crewview/internal/agent"
)

// detailPattern extracts a short finding from agent prose.
type detailPattern struct {
	re     *regexp.Regexp
	format func(m []string) string
}

func group(i int) func(m []string) string {
	return func(m []string) string { return m[i] }
}

func prefixed(prefix string, groups ...int) func(m []string) string {
	return func(m []string) string {
		parts := make([]string, len(groups))
		for i, g := range groups {
			parts[i] = m[g]
		}
		return prefix + strings.Join(parts, " ")
	}
}

// detailPatterns are tried in order; the first match wins.
var detailPatterns = []detailPattern{
	{regexp.MustCompile(`(?i)([A-Z0-9]+-\d+ SMC [^\s,.]+)[\s\S]{1,30}?(demand|forecast|inventory)`), prefixed("Analyzing ", 1, 2)},
	{regexp.MustCompile(`recommend\s+([^.]{10,60}\.)`), group(1)},
	{regexp.MustCompile(`found\s+([^.]{10,60}inventory[^.]{5,60}\.)`), group(1)},
	{regexp.MustCompile(`current inventory\D{1,30}(\d+)\s+units`), func(m []string) string { return "Current inventory: " + m[1] + " units" }},
	{regexp.MustCompile(`lead time\D{1,20}(\d+-\d+|\d+)\s*(days|weeks)`), prefixed("Lead time: ", 1, 2)},
	{regexp.MustCompile(`SMC.{1,30}?(unavailable|limited availability)`), prefixed("SMC reports ", 1)},
	{regexp.MustCompile(`supplier.{1,30}?(can deliver|cannot deliver)`), prefixed("Supplier ", 1)},
	{regexp.MustCompile(`identified\s+(\d+)\s+alternative suppliers`), func(m []string) string { return "Found " + m[1] + " alternative suppliers" }},
	{regexp.MustCompile(`alternative suppliers?.{1,50}?([A-Z][a-zA-Z]+\s+and\s+[A-Z][a-zA-Z]+)`), prefixed("Alternatives: ", 1)},
	{regexp.MustCompile(`supplier.{1,20}?ranked.{1,20}?(first|second|third|highest|lowest)`), prefixed("Supplier ranked ", 1)},
	{regexp.MustCompile(`([A-Z][a-zA-Z]+).{1,20}?score\D{1,10}(\d+)%`), func(m []string) string { return m[1] + " score: " + m[2] + "%" }},
	{regexp.MustCompile(`(?i)email\s+sent\s+to\s+(\S+@\S+)`), prefixed("Email sent to ", 1)},
	{regexp.MustCompile(`I\s+(analyzed|found|identified|recommend|discovered)\s+([^.]{10,60})`), func(m []string) string {
		return strings.ToUpper(m[1][:1]) + m[1][1:] + " " + strings.TrimSpace(m[2])
	}},
}

// extractDetail returns the first finding found in line, or "".
func extractDetail(line string) string {
	for _, p := range detailPatterns {
		if m := p.re.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(p.format(m))
		}
	}
	return ""
}

// keywordFallback picks a stock description from the agent's keyword table.
func keywordFallback(key agent.Key, line string, completion bool) string {
	lower := strings.ToLower(line)
	for _, r := range fallbacks[key] {
		if r.completion {
			if completion {
				return r.desc
			}
			continue
		}
		if len(r.keywords) == 0 {
			return r.desc
		}
		for _, k := range r.keywords {
			if strings.Contains(lower, k) {
				return r.desc
			}
		}
	}
	if completion {
		return "Task completed"
	}
	return "Working on assigned task"
}

// maxSuffixAttempts bounds the " (n)" de-duplication suffix.
const maxSuffixAttempts = 10

// describe selects the description for an accepted line: extracted detail,
// then the next unused stock task, then the keyword fallback. A description
// already shown for the agent is replaced by an unused variant or given a
// numeric suffix.
func describe(key agent.Key, line string, completion bool, shown map[string]bool) string {
	desc := extractDetail(line)
	if desc == "" {
		desc = nextUnused(predefinedTasks[key], shown)
	}
	if desc == "" {
		desc = keywordFallback(key, line, completion)
	}
	return dedupe(desc, shown)
}

func nextUnused(candidates []string, shown map[string]bool) string {
	for _, c := range candidates {
		if !shown[c] {
			return c
		}
	}
	return ""
}

func dedupe(desc string, shown map[string]bool) string {
	if !shown[desc] {
		return desc
	}
	if v := nextUnused(variants[desc], shown); v != "" {
		return v
	}
	for i := 1; i < maxSuffixAttempts; i++ {
		candidate := fmt.Sprintf("%s (%d)", desc, i)
		if !shown[candidate] {
			return candidate
		}
	}
	return desc
}
