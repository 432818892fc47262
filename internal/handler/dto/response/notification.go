package response

import (
	"github.com/google/uuid"

	"kilnhall/internal/usecase/commands"
)

type EnqueueResponse struct {
	JobID   uuid.UUID `json:"jobId"`
	Created bool      `json:"created"`
	Status  string    `json:"status"`
}

func FromEnqueueResult(r *commands.EnqueueResult) *EnqueueResponse {
	return &EnqueueResponse{
		JobID:   r.JobID,
		Created: r.Created,
		Status:  string(r.Status),
	}
}

type FanOutResponse struct {
	Enqueued int `json:"enqueued"`
	Replayed int `json:"replayed"`
}

func FromFanOutResult(r *commands.FanOutResult) *FanOutResponse {
	return &FanOutResponse{
		Enqueued: r.Enqueued,
		Replayed: r.Replayed,
	}
}

type ProcessStatsResponse struct {
	Picked  int `json:"picked"`
	Done    int `json:"done"`
	Skipped int `json:"skipped"`
	Retried int `json:"retried"`
	Failed  int `json:"failed"`
}

func FromProcessStats(s commands.ProcessStats) *ProcessStatsResponse {
	return &ProcessStatsResponse{
		Picked:  s.Picked,
		Done:    s.Done,
		Skipped: s.Skipped,
		Retried: s.Retried,
		Failed:  s.Failed,
	}
}

type SweepStatsResponse struct {
	Evaluated   int `json:"evaluated"`
	Transitions int `json:"transitions"`
	Reminders   int `json:"reminders"`
	Errors      int `json:"errors"`
}

func FromSweepStats(s commands.SweepStats) *SweepStatsResponse {
	return &SweepStatsResponse{
		Evaluated:   s.Evaluated,
		Transitions: s.Transitions,
		Reminders:   s.Reminders,
		Errors:      s.Errors,
	}
}
