package summary

import "github.com/Iron-Ham/crewview/internal/agent"

// StatusFunc reports the current status of the agent behind a key.
type StatusFunc func(agent.Key) agent.Status

// Order projects accepted entries onto the per-agent display sequences, in
// workflow order. Agents with no accepted entries are omitted. A completed
// agent shows its whole sequence; a working agent shows a prefix that grows
// with its entry count; a waiting agent shows nothing.
func Order(entries []Entry, statusOf StatusFunc, sequences map[agent.Key][]string) []Entry {
	counts := make(map[agent.Key]int)
	for _, e := range entries {
		counts[e.Key]++
	}

	var out []Entry
	for _, key := range agent.WorkflowSequence {
		n := counts[key]
		seq := sequences[key]
		if n == 0 || len(seq) == 0 {
			continue
		}

		var shown int
		switch statusOf(key) {
		case agent.StatusCompleted:
			shown = len(seq)
		case agent.StatusWorking:
			shown = workingPrefix(n, len(seq))
		default:
			continue
		}

		for i := range shown {
			out = append(out, Entry{
				Key:         key,
				DisplayName: string(key),
				Description: seq[i],
				Completion:  i == len(seq)-1,
			})
		}
	}
	return out
}

// workingPrefix returns how many sequence steps a working agent with n
// entries shows: proportional to n over five, at least one, never the final
// completion step.
func workingPrefix(n, seqLen int) int {
	k := n * (seqLen - 1) / ClosingMinimum
	k = max(k, 1)
	return min(k, seqLen-1)
}
