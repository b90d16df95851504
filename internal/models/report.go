package models

import "time"

// RunState tracks the pipeline through its forward-only lifecycle.
type RunState string

const (
	StateIdle           RunState = "idle"
	StateSearching      RunState = "searching"
	StateAnalyzing      RunState = "analyzing"
	StateFormatting     RunState = "formatting"
	StateTranslating    RunState = "translating"
	StateDistributing   RunState = "distributing"
	StateDone           RunState = "done"
	StatePartialFailure RunState = "partial_failure"
	StateFailed         RunState = "failed"
)

// DeliveryResult records one distribution attempt.
type DeliveryResult struct {
	Locale    Locale `json:"locale"`
	Success   bool   `json:"success"`
	MessageID int64  `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// StageReport records one stage's execution for the run artifact.
type StageReport struct {
	Stage      string    `json:"stage"`
	Attempts   int       `json:"attempts"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Degraded   bool      `json:"degraded,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// RunReport is the aggregate outcome of one pipeline run.
type RunReport struct {
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
	State         RunState         `json:"state"`
	Stages        []StageReport    `json:"stages"`
	Deliveries    []DeliveryResult `json:"deliveries"`
	FailedLocales []Locale         `json:"failed_locales,omitempty"`
}

// ExitCode maps the final state onto the process exit code: 0 full success,
// 2 partial success, 1 anything worse.
func (r *RunReport) ExitCode() int {
	switch r.State {
	case StateDone:
		return 0
	case StatePartialFailure:
		return 2
	default:
		return 1
	}
}
