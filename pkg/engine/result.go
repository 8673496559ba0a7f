package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the overall outcome of a run.
type Status int

// Run outcomes, ordered by severity.
const (
	StatusSuccess Status = iota
	StatusWarning
	StatusError
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ProjectResult carries per-project counters for one run.
type ProjectResult struct {
	ProjectID int
	Remote    string

	CreatedRemote int
	CreatedLocal  int
	UpdatedRemote int
	UpdatedLocal  int
	Skipped       int
}

// Result is the outcome of one run. ServerTime is what the caller should
// pass as lastSync on the next run.
type Result struct {
	RunID      string
	Status     Status
	StartedAt  time.Time
	Duration   time.Duration
	LastSync   time.Time
	ServerTime time.Time

	Projects map[int]*ProjectResult
	Warnings []string
	Errors   []string
}

func newResult(lastSync, serverTime time.Time) *Result {
	return &Result{
		RunID:      uuid.New().String(),
		Status:     StatusSuccess,
		StartedAt:  time.Now().UTC(),
		LastSync:   lastSync,
		ServerTime: serverTime,
		Projects:   make(map[int]*ProjectResult),
	}
}

func (r *Result) project(id int, remote string) *ProjectResult {
	if pr, ok := r.Projects[id]; ok {
		return pr
	}
	pr := &ProjectResult{ProjectID: id, Remote: remote}
	r.Projects[id] = pr
	return pr
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
	if r.Status < StatusWarning {
		r.Status = StatusWarning
	}
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Status = StatusError
}

func (r *Result) finish() {
	r.Duration = time.Since(r.StartedAt)
}

// Summary returns a one-line digest suitable for logs.
func (r *Result) Summary() string {
	var createdRemote, createdLocal, updatedRemote, updatedLocal, skipped int
	for _, pr := range r.Projects {
		createdRemote += pr.CreatedRemote
		createdLocal += pr.CreatedLocal
		updatedRemote += pr.UpdatedRemote
		updatedLocal += pr.UpdatedLocal
		skipped += pr.Skipped
	}

	parts := []string{
		fmt.Sprintf("status=%s", r.Status),
		fmt.Sprintf("projects=%d", len(r.Projects)),
		fmt.Sprintf("created_remote=%d", createdRemote),
		fmt.Sprintf("created_local=%d", createdLocal),
		fmt.Sprintf("updated_remote=%d", updatedRemote),
		fmt.Sprintf("updated_local=%d", updatedLocal),
		fmt.Sprintf("skipped=%d", skipped),
	}
	if len(r.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("warnings=%d", len(r.Warnings)))
	}
	if len(r.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("errors=%d", len(r.Errors)))
	}
	return strings.Join(parts, " ")
}
