package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MessageFailed is attached to cases the checker found a bug in
	MessageFailed = "Failure after P Check Command"
	// MessageErrored is attached to cases without a usable verdict
	MessageErrored = "Test Errored in Running"
)

// Entry is one processed case in a run report
type Entry struct {
	FileKey  string        `json:"file_key"`
	CaseKey  string        `json:"case_key"`
	Label    string        `json:"label"`
	File     string        `json:"file"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Detail   string        `json:"detail,omitempty"`
	Location *Location     `json:"location,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report is the ordered log of a single run request
type Report struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Requested int           `json:"requested"`
	Entries   []Entry       `json:"entries"`
	Cancelled bool          `json:"cancelled,omitempty"`
	Ended     bool          `json:"ended"`
}

// NewReport starts an empty report for a run over the given number of cases.
func NewReport(requested int) *Report {
	return &Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Requested: requested,
	}
}

// Append adds an entry. Entries appended after End are dropped.
func (r *Report) Append(e Entry) bool {
	if r.Ended {
		return false
	}
	r.Entries = append(r.Entries, e)
	return true
}

// End terminates the report.
func (r *Report) End() {
	if r.Ended {
		return
	}
	r.Ended = true
	r.Duration = time.Since(r.StartedAt)
}

// Counts returns the number of passed, failed and errored entries.
func (r *Report) Counts() (passed, failed, errored int) {
	for _, e := range r.Entries {
		switch e.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusErrored:
			errored++
		}
	}
	return passed, failed, errored
}

// NotPassed returns the failed and errored entries in report order.
func (r *Report) NotPassed() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status == StatusFailed || e.Status == StatusErrored {
			out = append(out, e)
		}
	}
	return out
}
