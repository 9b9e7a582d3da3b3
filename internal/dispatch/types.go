package dispatch

import "time"

// Task pairs one destination channel with the prompt used to generate its
// content. Tasks are built fresh per run and never persisted.
type Task struct {
	ChannelID int64
	Prompt    string
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Outcome is the per-channel result of a full task (generate + deliver).
// Exactly one Outcome is produced per Task.
type Outcome struct {
	ChannelID int64
	Status    Status
	// Detail carries the failure description; empty on success.
	Detail string
}

func (o Outcome) Failed() bool { return o.Status == StatusFailure }

// Report collects the outcomes of one run, in input task order.
type Report struct {
	RunID      string
	Outcomes   []Outcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed returns the number of failed outcomes.
func (r Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}
