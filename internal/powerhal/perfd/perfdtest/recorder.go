// Package perfdtest provides an in-memory perf daemon for tests.
package perfdtest

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
)

type Op string

const (
	OpAcquire  Op = "acquire"
	OpRelease  Op = "release"
	OpApply    Op = "apply"
	OpWithdraw Op = "withdraw"
)

// Call is one recorded daemon request
type Call struct {
	Op     Op
	HintID int32
	Handle framework.Handle
	Table  api.TuningTable
}

var ErrRejected = errors.New("rejected by test daemon")

// Recorder implements framework.PerfDaemon and records every request
type Recorder struct {
	mu    sync.Mutex
	next  framework.Handle
	calls []Call
	held  map[framework.Handle]int32
	tuned map[int32]api.TuningTable

	// FailAcquire and FailApply make the next requests fail
	FailAcquire bool
	FailApply   bool
}

var _ framework.PerfDaemon = &Recorder{}

func NewRecorder() *Recorder {
	return &Recorder{
		held:  make(map[framework.Handle]int32),
		tuned: make(map[int32]api.TuningTable),
	}
}

func (r *Recorder) AcquireTunables(hintID int32, _ int32) (framework.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAcquire {
		r.calls = append(r.calls, Call{Op: OpAcquire, HintID: hintID})
		return 0, ErrRejected
	}
	r.next++
	r.held[r.next] = hintID
	r.calls = append(r.calls, Call{Op: OpAcquire, HintID: hintID, Handle: r.next})
	return r.next, nil
}

func (r *Recorder) ReleaseTunables(handle framework.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpRelease, Handle: handle, HintID: r.held[handle]})
	if _, ok := r.held[handle]; !ok {
		return fmt.Errorf("handle %d is not held", handle)
	}
	delete(r.held, handle)
	return nil
}

func (r *Recorder) ApplyTuningRequest(hintID int32, table api.TuningTable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpApply, HintID: hintID, Table: slices.Clone(table)})
	if r.FailApply {
		return ErrRejected
	}
	r.tuned[hintID] = slices.Clone(table)
	return nil
}

func (r *Recorder) WithdrawTuningRequest(hintID int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpWithdraw, HintID: hintID})
	delete(r.tuned, hintID)
	return nil
}

// Calls returns a copy of all recorded requests
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// CallsOf returns the recorded requests of a single kind
func (r *Recorder) CallsOf(op Op) []Call {
	var out []Call
	for _, call := range r.Calls() {
		if call.Op == op {
			out = append(out, call)
		}
	}
	return out
}

// HeldHints returns the hint ids of outstanding acquire handles
func (r *Recorder) HeldHints() []int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int32, 0, len(r.held))
	for _, hintID := range r.held {
		out = append(out, hintID)
	}
	return out
}

// Tuned returns the table currently applied for hintID
func (r *Recorder) Tuned(hintID int32) (api.TuningTable, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.tuned[hintID]
	return table, ok
}

// Reset forgets recorded calls but keeps held state
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
