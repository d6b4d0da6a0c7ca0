// Package summary condenses the crew's log stream into a handful of
// de-duplicated, human-readable entries per agent.
//
// A [RunContext] holds all per-run tracking. Each raw line is passed to
// [RunContext.Consider], which filters noise, attributes the line to one of
// the five agent keys, decides whether it adds information, and picks a
// description. When the run completes, [RunContext.Synthesize] tops up
// sparse agents from their stock task lists. [Order] projects the accepted
// entries onto the fixed per-agent display sequences.
package summary

import (
	"math"
	"sync"

	"github.com/Iron-Ham/crewview/internal/agent"
	"github.com/Iron-Ham/crewview/internal/detect"
)

// Limits.
const (
	DefaultMaxMessagesPerAgent = 6
	// ClosingMinimum is the per-agent entry count closing synthesis tops up to.
	ClosingMinimum = 5
	// leniencyRatio sets the early-phase threshold as a share of the cap.
	leniencyRatio = 0.8
	// earlyKeyLen is the prefix length used for early-phase de-duplication.
	earlyKeyLen = 30
)

// Entry is one line of the condensed view.
type Entry struct {
	Key         agent.Key
	DisplayName string
	Description string
	Fingerprint string
	Completion  bool
	Synthesized bool
}

// tracking is the per-agent state of one run.
type tracking struct {
	workingShown   bool
	completedShown bool
	seen           map[string]bool // fingerprints and early-phase keys
	shown          map[string]bool // descriptions
	count          int
}

func newTracking() *tracking {
	return &tracking{
		seen:  make(map[string]bool),
		shown: make(map[string]bool),
	}
}

// RunContext is the summarizer state for a single run. Create a fresh one
// per run. It is safe for concurrent use.
type RunContext struct {
	mu      sync.Mutex
	max     int
	lenient int
	tracks  map[agent.Key]*tracking
	entries []Entry
}

// NewRunContext creates summarizer state with the given per-agent cap. A
// non-positive cap selects DefaultMaxMessagesPerAgent.
func NewRunContext(maxPerAgent int) *RunContext {
	if maxPerAgent <= 0 {
		maxPerAgent = DefaultMaxMessagesPerAgent
	}
	rc := &RunContext{
		max:     maxPerAgent,
		lenient: int(math.Ceil(float64(maxPerAgent) * leniencyRatio)),
		tracks:  make(map[agent.Key]*tracking),
	}
	for _, k := range agent.WorkflowSequence {
		rc.tracks[k] = newTracking()
	}
	return rc
}

// Consider runs one raw line through the acceptance policy. It returns the
// new entry and true if the line was accepted.
//
// Policy, after filtering and attribution:
//   - a topic keyword owned by another agent rejects the line
//   - completion lines are accepted once per agent
//   - while the agent has few entries, any line with an unseen prefix is accepted
//   - special-case lines and lines with agent output bypass the soft rule
//   - the first working line is accepted once
//   - otherwise a new fingerprint is accepted while under the cap
//
// The cap is never exceeded.
func (rc *RunContext) Consider(line string) (Entry, bool) {
	if isNoise(line) {
		return Entry{}, false
	}
	name := detect.Attribution(line)
	if name == "" {
		return Entry{}, false
	}
	key, ok := ResolveKey(name)
	if !ok {
		return Entry{}, false
	}
	fp, ok := fingerprint(line, key)
	if !ok {
		return Entry{}, false
	}
	completion := detect.Normalize(line) == detect.LabelCompleted

	rc.mu.Lock()
	defer rc.mu.Unlock()

	tr := rc.tracks[key]
	if tr.count >= rc.max || !rc.accept(tr, line, key, fp, completion) {
		return Entry{}, false
	}

	tr.seen[fp] = true
	if fp == FingerprintWorking {
		tr.workingShown = true
	}
	if completion {
		tr.completedShown = true
	}
	tr.count++

	desc := describe(key, line, completion, tr.shown)
	tr.shown[desc] = true
	e := Entry{
		Key:         key,
		DisplayName: string(key),
		Description: desc,
		Fingerprint: fp,
		Completion:  completion,
	}
	rc.entries = append(rc.entries, e)
	return e, true
}

func (rc *RunContext) accept(tr *tracking, line string, key agent.Key, fp string, completion bool) bool {
	if completion {
		return !tr.completedShown
	}
	if tr.count < rc.lenient {
		early := "early:" + slug(line, earlyKeyLen)
		if !tr.seen[early] {
			tr.seen[early] = true
			return true
		}
		// Same prefix as an earlier line: fall through to the regular rules.
	}
	if isSpecialCase(line, key) {
		return !tr.seen[fp]
	}
	if fp == FingerprintWorking && !tr.workingShown {
		return true
	}
	return !tr.seen[fp]
}

// Synthesize tops up every agent with fewer than ClosingMinimum entries from
// its unused stock tasks. Call once when the run completes. It returns the
// synthesized entries.
func (rc *RunContext) Synthesize() []Entry {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	var out []Entry
	for _, key := range agent.WorkflowSequence {
		tr := rc.tracks[key]
		for _, task := range predefinedTasks[key] {
			if tr.count >= ClosingMinimum || tr.count >= rc.max {
				break
			}
			if tr.shown[task] {
				continue
			}
			tr.shown[task] = true
			tr.count++
			e := Entry{
				Key:         key,
				DisplayName: string(key),
				Description: task,
				Fingerprint: "synthesized_" + slug(task, 20),
				Synthesized: true,
			}
			rc.entries = append(rc.entries, e)
			out = append(out, e)
		}
	}
	return out
}

// Entries returns accepted entries in acceptance order.
func (rc *RunContext) Entries() []Entry {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]Entry(nil), rc.entries...)
}

// Count returns the number of entries accepted for key.
func (rc *RunContext) Count(key agent.Key) int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if tr, ok := rc.tracks[key]; ok {
		return tr.count
	}
	return 0
}

// Max returns the per-agent cap.
func (rc *RunContext) Max() int {
	return rc.max
}
