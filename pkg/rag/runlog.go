package rag

import (
	"fmt"
	"path/filepath"
	"time"

	"ai-docchat-be/internal/pkg/logger"
)

const runLogModule = "WORKFLOW"

// RunLogFactory hands out one isolated file logger per workflow run, so each
// run can be replayed from its own log without grepping the main log. An
// empty directory disables run logs entirely.
type RunLogFactory struct {
	dir string
}

func NewRunLogFactory(dir string) *RunLogFactory {
	return &RunLogFactory{dir: dir}
}

// For opens the run log for one (session, run) pair.
func (f *RunLogFactory) For(sessionID, runID string) *RunLogger {
	if f == nil || f.dir == "" {
		return &RunLogger{}
	}
	path := filepath.Join(f.dir, fmt.Sprintf("workflow_%s_%s.log", sessionID, runID))
	return &RunLogger{
		log:       logger.NewIsolatedLogger(path),
		sessionID: sessionID,
		runID:     runID,
		startedAt: time.Now(),
	}
}

// RunLogger records the step-by-step trail of a single workflow run. All
// methods are safe on the zero value, which silently drops everything.
type RunLogger struct {
	log       logger.ILogger
	sessionID string
	runID     string
	startedAt time.Time
}

func (r *RunLogger) entry(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["session_id"] = r.sessionID
	details["run_id"] = r.runID
	return details
}

func (r *RunLogger) NodeStart(node string, details map[string]interface{}) {
	if r.log == nil {
		return
	}
	r.log.Info(runLogModule, "node start: "+node, r.entry(details))
}

func (r *RunLogger) NodeEnd(node string, details map[string]interface{}) {
	if r.log == nil {
		return
	}
	r.log.Info(runLogModule, "node end: "+node, r.entry(details))
}

// Intermediate records a mid-node observation worth keeping for replay.
func (r *RunLogger) Intermediate(step string, details map[string]interface{}, note string) {
	if r.log == nil {
		return
	}
	d := r.entry(details)
	d["note"] = note
	r.log.Info(runLogModule, "intermediate: "+step, d)
}

func (r *RunLogger) Error(node string, err error) {
	if r.log == nil {
		return
	}
	r.log.Error(runLogModule, "node failed: "+node, r.entry(map[string]interface{}{
		"error": err.Error(),
	}))
}

func (r *RunLogger) Transition(from, to Status) {
	if r.log == nil {
		return
	}
	r.log.Info(runLogModule, "status transition", r.entry(map[string]interface{}{
		"from": string(from),
		"to":   string(to),
	}))
}

// Stats records the end-of-run processing summary.
func (r *RunLogger) Stats(stats map[string]interface{}) {
	if r.log == nil {
		return
	}
	d := r.entry(stats)
	d["elapsed_ms"] = time.Since(r.startedAt).Milliseconds()
	r.log.Info(runLogModule, "processing stats", d)
}

func (r *RunLogger) Close() {
	if r.log == nil {
		return
	}
	_ = r.log.Sync()
}
