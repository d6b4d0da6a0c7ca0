// Package transcript records runs as JSON Lines files, one per run, so a
// run can be inspected or replayed after the fact.
package transcript

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/Iron-Ham/crewview/internal/agent"
	"github.com/Iron-Ham/crewview/internal/event"
	"github.com/Iron-Ham/crewview/internal/feed"
	"github.com/Iron-Ham/crewview/internal/logging"
)

// Kind identifies a record.
type Kind string

const (
	KindSnapshot   Kind = "snapshot"
	KindTransition Kind = "transition"
	KindSummary    Kind = "summary"
)

// Transition is a recorded agent state change.
type Transition struct {
	AgentID string       `json:"agent_id"`
	Agent   string       `json:"agent"`
	From    agent.Status `json:"from"`
	To      agent.Status `json:"to"`
}

// SummaryRecord is a recorded summary entry.
type SummaryRecord struct {
	Key         agent.Key `json:"key"`
	Description string    `json:"description"`
	Completion  bool      `json:"completion,omitempty"`
	Synthesized bool      `json:"synthesized,omitempty"`
}

// Record is one line of a transcript. Exactly one payload is set.
//
// A snapshot record carries only the log lines added since the previous
// snapshot of the run; LogOffset is the index of its first line in the
// cumulative log. Use Snapshots to rebuild the polled snapshots.
type Record struct {
	Kind       Kind           `json:"kind"`
	RunID      string         `json:"run_id"`
	Time       time.Time      `json:"time"`
	LogOffset  int            `json:"log_offset,omitempty"`
	Snapshot   *feed.Snapshot `json:"snapshot,omitempty"`
	Transition *Transition    `json:"transition,omitempty"`
	Summary    *SummaryRecord `json:"summary,omitempty"`
}

// ErrLockTimeout is returned when the transcript lock cannot be acquired.
var ErrLockTimeout = errors.New("timed out waiting for transcript lock")

const (
	lockTimeout   = 5 * time.Second
	lockRetry     = 50 * time.Millisecond
	maxRecordSize = 4 * 1024 * 1024
)

// Path returns the transcript file for a run.
func Path(dir, runID string) string {
	return filepath.Join(dir, runID+".jsonl")
}

// Recorder appends records for the run in progress. The current run is
// taken from run.started events; see Attach.
type Recorder struct {
	dir    string
	logger *logging.Logger

	mu        sync.Mutex
	runID     string
	loggedRun string
	logged    int
}

// NewRecorder creates dir if needed and returns a recorder writing into it.
func NewRecorder(dir string, logger *logging.Logger) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create transcript dir: %w", err)
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Recorder{dir: dir, logger: logger.WithComponent("transcript")}, nil
}

// Attach subscribes the recorder to bus. It returns the subscription IDs.
func (r *Recorder) Attach(bus *event.Bus) []string {
	return []string{
		bus.Subscribe(event.TypeRunStarted, func(e event.Event) {
			r.mu.Lock()
			r.runID = e.(event.RunStartedEvent).RunID
			r.mu.Unlock()
		}),
		bus.Subscribe(event.TypeAgentStatusChanged, func(e event.Event) {
			changed := e.(event.AgentStatusChangedEvent)
			r.record(Record{Kind: KindTransition, Time: changed.Timestamp(), Transition: &Transition{
				AgentID: changed.AgentID,
				Agent:   changed.AgentName,
				From:    changed.From,
				To:      changed.To,
			}})
		}),
		bus.Subscribe(event.TypeSummaryEntryAdded, func(e event.Event) {
			added := e.(event.SummaryEntryAddedEvent)
			r.record(Record{Kind: KindSummary, Time: added.Timestamp(), Summary: &SummaryRecord{
				Key:         added.Key,
				Description: added.Description,
				Completion:  added.Completion,
				Synthesized: added.Synthesized,
			}})
		}),
	}
}

// Snapshot records a polled snapshot for runID and makes it the current run.
// Only log lines not yet recorded for the run are written.
func (r *Recorder) Snapshot(runID string, snap feed.Snapshot) {
	r.mu.Lock()
	r.runID = runID
	if r.loggedRun != runID {
		r.loggedRun, r.logged = runID, 0
	}
	offset := r.logged
	if len(snap.Logs) < offset {
		offset = 0
	}
	r.logged = len(snap.Logs)
	r.mu.Unlock()

	snap.Logs = slices.Clone(snap.Logs[offset:])
	r.record(Record{Kind: KindSnapshot, Time: time.Now(), LogOffset: offset, Snapshot: &snap})
}

func (r *Recorder) record(rec Record) {
	r.mu.Lock()
	rec.RunID = r.runID
	r.mu.Unlock()
	if rec.RunID == "" {
		return
	}
	if err := Append(Path(r.dir, rec.RunID), rec); err != nil {
		r.logger.WithRun(rec.RunID).Warn("failed to write transcript record", "kind", string(rec.Kind), "error", err)
	}
}

// Append writes one record to path under its lock file.
func Append(path string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	data = append(data, '\n')

	fl := flock.New(path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	locked, err := fl.TryLockContext(ctx, lockRetry)
	switch {
	case errors.Is(err, context.DeadlineExceeded), err == nil && !locked:
		return ErrLockTimeout
	case err != nil:
		return fmt.Errorf("lock transcript: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Read loads every record of a transcript file. Blank lines are skipped.
func Read(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxRecordSize)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return records, nil
}

// Snapshots rebuilds the polled snapshots of records in order, each with
// its cumulative log.
func Snapshots(records []Record) []feed.Snapshot {
	var (
		out  []feed.Snapshot
		logs []string
	)
	for _, rec := range records {
		if rec.Kind != KindSnapshot || rec.Snapshot == nil {
			continue
		}
		logs = append(logs[:min(rec.LogOffset, len(logs))], rec.Snapshot.Logs...)
		snap := *rec.Snapshot
		snap.Logs = slices.Clone(logs)
		out = append(out, snap)
	}
	return out
}
